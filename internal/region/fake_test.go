package region

import "context"

type FakeRepo struct {
	trace []string

	ListCategoriesFunc  func(ctx context.Context) ([]*Category, error)
	ListCitiesFunc      func(ctx context.Context) ([]*City, error)
	CategoryExistsFunc  func(ctx context.Context, id int64) (bool, error)
	CityExistsFunc      func(ctx context.Context, id int64) (bool, error)
	ExistingCityIDsFunc func(ctx context.Context, ids []int64) ([]int64, error)
}

func (f *FakeRepo) record(step string) {
	f.trace = append(f.trace, step)
}

func (f *FakeRepo) ListCategories(ctx context.Context) ([]*Category, error) {
	f.record("ListCategories")
	if f.ListCategoriesFunc != nil {
		return f.ListCategoriesFunc(ctx)
	}
	return nil, nil
}

func (f *FakeRepo) ListCities(ctx context.Context) ([]*City, error) {
	f.record("ListCities")
	if f.ListCitiesFunc != nil {
		return f.ListCitiesFunc(ctx)
	}
	return nil, nil
}

func (f *FakeRepo) CategoryExists(ctx context.Context, id int64) (bool, error) {
	f.record("CategoryExists")
	if f.CategoryExistsFunc != nil {
		return f.CategoryExistsFunc(ctx, id)
	}
	return true, nil
}

func (f *FakeRepo) CityExists(ctx context.Context, id int64) (bool, error) {
	f.record("CityExists")
	if f.CityExistsFunc != nil {
		return f.CityExistsFunc(ctx, id)
	}
	return true, nil
}

func (f *FakeRepo) ExistingCityIDs(ctx context.Context, ids []int64) ([]int64, error) {
	f.record("ExistingCityIDs")
	if f.ExistingCityIDsFunc != nil {
		return f.ExistingCityIDsFunc(ctx, ids)
	}
	return ids, nil
}

var _ Repository = (*FakeRepo)(nil)

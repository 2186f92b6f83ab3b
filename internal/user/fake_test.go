package user

import (
	"context"
)

type FakeRepo struct {
	trace []string

	CreateFunc        func(ctx context.Context, u *User) error
	GetByIDFunc       func(ctx context.Context, id int64) (*User, error)
	ExistsByEmailFunc func(ctx context.Context, email string) (bool, error)
	ListFunc          func(ctx context.Context, limit, offset int) ([]*User, int, error)
	UpdateFunc        func(ctx context.Context, u *User) error
	SoftDeleteFunc    func(ctx context.Context, id int64) error
}

func (f *FakeRepo) record(step string) {
	f.trace = append(f.trace, step)
}

func (f *FakeRepo) Trace() []string {
	return append([]string(nil), f.trace...)
}

func (f *FakeRepo) Create(ctx context.Context, u *User) error {
	f.record("Create")
	if f.CreateFunc != nil {
		return f.CreateFunc(ctx, u)
	}
	u.ID = 1
	return nil
}

func (f *FakeRepo) GetByID(ctx context.Context, id int64) (*User, error) {
	f.record("GetByID")
	if f.GetByIDFunc != nil {
		return f.GetByIDFunc(ctx, id)
	}
	return nil, nil
}

func (f *FakeRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	f.record("ExistsByEmail")
	if f.ExistsByEmailFunc != nil {
		return f.ExistsByEmailFunc(ctx, email)
	}
	return false, nil
}

func (f *FakeRepo) List(ctx context.Context, limit, offset int) ([]*User, int, error) {
	f.record("List")
	if f.ListFunc != nil {
		return f.ListFunc(ctx, limit, offset)
	}
	return nil, 0, nil
}

func (f *FakeRepo) Update(ctx context.Context, u *User) error {
	f.record("Update")
	if f.UpdateFunc != nil {
		return f.UpdateFunc(ctx, u)
	}
	return nil
}

func (f *FakeRepo) SoftDelete(ctx context.Context, id int64) error {
	f.record("SoftDelete")
	if f.SoftDeleteFunc != nil {
		return f.SoftDeleteFunc(ctx, id)
	}
	return nil
}

var _ Repository = (*FakeRepo)(nil)

// FakeRegions accepts every id unless a func is set
type FakeRegions struct {
	EnsureCategoryFunc func(ctx context.Context, id int64) error
	EnsureCityFunc     func(ctx context.Context, id int64) error
}

func (f *FakeRegions) EnsureCategory(ctx context.Context, id int64) error {
	if f.EnsureCategoryFunc != nil {
		return f.EnsureCategoryFunc(ctx, id)
	}
	return nil
}

func (f *FakeRegions) EnsureCity(ctx context.Context, id int64) error {
	if f.EnsureCityFunc != nil {
		return f.EnsureCityFunc(ctx, id)
	}
	return nil
}

var _ RegionChecker = (*FakeRegions)(nil)

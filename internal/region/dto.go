package region

// CategoryResponse represents a category in API responses
type CategoryResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// CityResponse represents a city in API responses
type CityResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

func (c *Category) ToResponse() *CategoryResponse {
	return &CategoryResponse{ID: c.ID, Name: c.Name}
}

func (c *City) ToResponse() *CityResponse {
	return &CityResponse{ID: c.ID, Name: c.Name}
}

package region

import "github.com/uptrace/bun"

// Category is an interest category users and events are tagged with
type Category struct {
	bun.BaseModel `bun:"table:categories"`

	ID   int64  `bun:"id,pk,autoincrement"`
	Name string `bun:"name,notnull"`
}

// City is a city users live in and events take place in
type City struct {
	bun.BaseModel `bun:"table:cities"`

	ID   int64  `bun:"id,pk,autoincrement"`
	Name string `bun:"name,notnull"`
}

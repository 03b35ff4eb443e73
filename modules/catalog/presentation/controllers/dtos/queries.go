package dtos

// Query DTOs are decoded from list endpoints' query strings by the
// shared form decoder.

type PartListQuery struct {
	Brand    string `form:"brand"`
	Category string `form:"category"`
	Search   string `form:"search"`
	Active   *bool  `form:"active"`
	Limit    int    `form:"limit"`
	Offset   int    `form:"offset"`
}

type CatalogSearchQuery struct {
	Term   string `form:"q"`
	Make   string `form:"make"`
	Model  string `form:"model"`
	Year   int    `form:"year"`
	Limit  int    `form:"limit"`
	Offset int    `form:"offset"`
}

type ImportHistoryQuery struct {
	Limit  int `form:"limit"`
	Offset int `form:"offset"`
}

package model

type ListProductsOptions struct {
	Page      int
	Limit     int
	Sort      string
	SortOrder string
}

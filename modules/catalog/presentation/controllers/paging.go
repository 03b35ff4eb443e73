package controllers

import (
	"github.com/partsdesk/partsdesk/pkg/configuration"
)

func clampPaging(limit, offset int) (int, int) {
	conf := configuration.Use()
	if limit <= 0 {
		limit = conf.PageSize
	}
	if limit > conf.MaxPageSize {
		limit = conf.MaxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

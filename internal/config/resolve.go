package config

import (
	"strings"

	"github.com/phyten/tagfilter/internal/model"
)

func ResolveString(def string, values ...*string) string {
	result := def
	for _, v := range values {
		if v != nil {
			result = *v
		}
	}
	return result
}

func ResolveInt(def int, values ...*int) int {
	result := def
	for _, v := range values {
		if v != nil {
			result = *v
		}
	}
	return result
}

func ResolveBool(def bool, values ...*bool) bool {
	result := def
	for _, v := range values {
		if v != nil {
			result = *v
		}
	}
	return result
}

func ResolveInts(def []int, values ...*[]int) []int {
	result := cloneInts(def)
	for _, v := range values {
		if v != nil {
			result = cloneInts(*v)
		}
	}
	return result
}

// ResolveTags replaces the whole collection; tag lists are never merged
// element-wise because order is part of the collection.
func ResolveTags(def []model.Tag, values ...*[]model.Tag) []model.Tag {
	result := model.CloneTags(def)
	for _, v := range values {
		if v != nil {
			result = model.CloneTags(*v)
			if result == nil {
				result = []model.Tag{}
			}
		}
	}
	return result
}

func ResolveAndTrim(def string, values ...*string) string {
	value := ResolveString(def, values...)
	return strings.TrimSpace(value)
}

package service

import "github.com/codetyper/codetyper-api/internal/core/ports"

const (
	defaultTaskPageSize    = 15
	defaultSnippetPageSize = 10
	maxPageSize            = 100
)

// pageOf normalises a requested page. Values below 1 fall back to the first
// page and the default size; sizes above maxPageSize are capped.
func pageOf(number, size, defaultSize int) ports.Page {
	if number < 1 {
		number = 1
	}
	if size < 1 {
		size = defaultSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}
	return ports.Page{Number: number, Size: size}
}

func totalPages(total int64, size int) int {
	if total <= 0 {
		return 0
	}
	return int((total + int64(size) - 1) / int64(size))
}

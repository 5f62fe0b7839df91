package api

import "github.com/kanineapp/kanine-server/internal/service"

// Services groups the services the handlers call.
type Services struct {
	Auth     *service.AuthService
	Book     *service.BookService
	Category *service.CategoryService
	Note     *service.NoteService
	Tag      *service.TagService
	Star     *service.StarService
	PageFile *service.PageFileService
	Search   *service.SearchService
}

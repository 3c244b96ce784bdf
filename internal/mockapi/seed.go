package mockapi

import (
	"github.com/Gilberthb/Umunsi-sub002/internal/domain"
)

// Seed credentials for local development.
const (
	SeedAdminEmail     = "admin@newsdesk.local"
	SeedEditorEmail    = "editor@newsdesk.local"
	SeedPassword       = "newsdesk123"
	seedArticlesPerCat = 4
)

func (s *Server) seed() error {
	admin, err := s.AddUser(Account{
		Username:  "admin",
		Email:     SeedAdminEmail,
		Password:  SeedPassword,
		FirstName: "Ada",
		LastName:  "Admin",
		Role:      domain.RoleAdmin,
	})
	if err != nil {
		return err
	}
	editor, err := s.AddUser(Account{
		Username:  "editor",
		Email:     SeedEditorEmail,
		Password:  SeedPassword,
		FirstName: "Eli",
		LastName:  "Editor",
		Role:      domain.RoleEditor,
	})
	if err != nil {
		return err
	}

	for i, name := range []string{"Politics", "Sports", "Arts & Culture"} {
		c := s.AddCategory(name)
		author := admin.ID
		if i%2 == 1 {
			author = editor.ID
		}
		s.AddArticles(seedArticlesPerCat, name+" story", author, c.ID, domain.StatusPublished)
		s.AddArticles(1, name+" draft", author, c.ID, domain.StatusDraft)
	}
	return nil
}

package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kanineapp/kanine-server/internal/normalize"
	"github.com/kanineapp/kanine-server/internal/service"
	"github.com/kanineapp/kanine-server/internal/store"
)

// seedLibrary is the demo content written by the seed command.
var seedLibrary = []struct {
	category string
	title    string
	pages    int
	starred  []int
	notes    []service.CreateNoteRequest
}{
	{
		category: "Mathematics",
		title:    "Algebra",
		pages:    320,
		starred:  []int{3, 12},
		notes: []service.CreateNoteRequest{
			{PageNumber: 3, Content: "Groups need closure, associativity, identity and inverses.", Tags: []string{"definitions", "groups"}},
			{PageNumber: 3, Content: "Lagrange: the order of a subgroup divides the order of the group.", Tags: []string{"theorems", "groups"}},
			{PageNumber: 12, Content: "<p>Every <strong>field</strong> is an integral domain.</p>", Tags: []string{"rings"}, Format: "html"},
		},
	},
	{
		category: "Mathematics",
		title:    "Linear Algebra Done Right",
		pages:    340,
		starred:  []int{1},
		notes: []service.CreateNoteRequest{
			{PageNumber: 1, Content: "Vector spaces first, determinants last.", Tags: []string{"overview"}},
		},
	},
	{
		category: "Fiction",
		title:    "Dune",
		pages:    0,
		notes: []service.CreateNoteRequest{
			{PageNumber: 7, Content: "Fear is the mind-killer.", Tags: []string{"quotes"}},
		},
	},
}

func newSeedCmd(flags *globalFlags) *cobra.Command {
	var (
		email    string
		password string
	)

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Fill a development database with demo books and notes",
		Long: `Create demo categories, books, starred pages and tagged notes for a user.

The user is created first when it does not exist yet. Run against a development
data directory only: the demo content is added every time the command runs.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := flags.load(cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			st, err := openStore(cfg, log)
			if err != nil {
				return err
			}
			defer st.Close()

			index, err := openIndex(cfg, log)
			if err != nil {
				return err
			}
			defer index.Close()

			ctx := cmd.Context()

			user, err := st.GetUserByEmail(ctx, normalize.Email(email))
			if errors.Is(err, store.ErrNotFound) {
				user, err = service.NewAuthService(st, nil, true, log).CreateUser(ctx, service.RegisterRequest{
					Email:       email,
					Password:    password,
					DisplayName: "Demo User",
				})
			}
			if err != nil {
				return fmt.Errorf("resolve user: %w", err)
			}

			categories := service.NewCategoryService(st, log)
			books := service.NewBookService(st, index, nil, log)
			notes := service.NewNoteService(st, index, log)
			stars := service.NewStarService(st, nil, log)

			categoryIDs := make(map[string]int64)
			existing, err := categories.ListCategories(ctx, user.ID)
			if err != nil {
				return err
			}
			for _, c := range existing {
				categoryIDs[c.Name] = c.ID
			}

			var bookCount, noteCount int
			for _, entry := range seedLibrary {
				categoryID, ok := categoryIDs[entry.category]
				if !ok {
					category, err := categories.CreateCategory(ctx, user.ID, service.CategoryRequest{Name: entry.category})
					if err != nil {
						return fmt.Errorf("create category %q: %w", entry.category, err)
					}
					categoryID = category.ID
					categoryIDs[entry.category] = categoryID
				}

				book, err := books.CreateBook(ctx, user.ID, service.CreateBookRequest{
					Title:      entry.title,
					Pages:      entry.pages,
					CategoryID: &categoryID,
				})
				if err != nil {
					return fmt.Errorf("create book %q: %w", entry.title, err)
				}
				bookCount++

				for _, page := range entry.starred {
					if _, err := stars.ToggleStar(ctx, user.ID, book.ID, service.StarRequest{PageNumber: page}); err != nil {
						return fmt.Errorf("star page %d of %q: %w", page, entry.title, err)
					}
				}

				for _, req := range entry.notes {
					req.BookID = book.ID
					if _, err := notes.CreateNote(ctx, user.ID, req); err != nil {
						return fmt.Errorf("create note on %q: %w", entry.title, err)
					}
					noteCount++
				}
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d books and %d notes for %s\n", bookCount, noteCount, user.Email)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "demo@kanine.local", "User to seed")
	cmd.Flags().StringVar(&password, "password", "kanine-demo", "Password when the user has to be created")

	return cmd
}

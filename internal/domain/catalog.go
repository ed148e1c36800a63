package domain

// DefaultCatalog is the predefined list of trivia categories backed by the
// external trivia source. Any other name refers to a player-authored bank.
var DefaultCatalog = []string{
	"General Knowledge",
	"Books",
	"Film",
	"Music",
	"Musicals & Theatres",
	"Television",
	"Video Games",
	"Board Games",
	"Science & Nature",
	"Computers",
	"Mathematics",
	"Mythology",
	"Sports",
	"History",
	"Politics",
	"Art",
	"Celebrities",
	"Animals",
	"Vehicles",
	"Comics",
	"Gadgets",
	"Japanese Anime & Manga",
	"Cartoon & Animations",
}

// NewCategory builds a Category, flagging catalog membership.
func NewCategory(name string, catalog []string) Category {
	for _, c := range catalog {
		if c == name {
			return Category{Name: name, Catalog: true}
		}
	}
	return Category{Name: name}
}

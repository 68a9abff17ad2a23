package catalog

type Product struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       int64  `json:"price"`
	Currency    string `json:"currency"`
	Image       string `json:"image"`
	Category    string `json:"category"`
}

type Category struct {
	Name string `json:"name"`
	Icon string `json:"icon"`
	Slug string `json:"slug"`
}

type HomePage struct {
	Title      string     `json:"title"`
	Subtitle   string     `json:"subtitle"`
	Categories []Category `json:"categories"`
	Featured   []Product  `json:"featured"`
}

var categories = []Category{
	{Name: "Clothes", Icon: "👕", Slug: "clothes"},
	{Name: "Electronics", Icon: "💻", Slug: "electronics"},
	{Name: "Games", Icon: "🎮", Slug: "games"},
	{Name: "Offers", Icon: "🔥", Slug: "offers"},
}

var products = []Product{
	{
		ID:          "1",
		Name:        "Cotton t-shirt",
		Description: "Plain white t-shirt, 100% organic cotton",
		Price:       12990,
		Image:       "https://picsum.photos/seed/tshirt/400/300",
		Category:    "clothes",
	},
	{
		ID:          "2",
		Name:        "Denim jacket",
		Description: "Classic blue denim jacket",
		Price:       39990,
		Image:       "https://picsum.photos/seed/jacket/400/300",
		Category:    "clothes",
	},
	{
		ID:          "3",
		Name:        "Wireless headphones",
		Description: "Over-ear headphones with noise cancelling",
		Price:       89990,
		Image:       "https://picsum.photos/seed/headphones/400/300",
		Category:    "electronics",
	},
	{
		ID:          "4",
		Name:        "Mechanical keyboard",
		Description: "Tenkeyless keyboard with brown switches",
		Price:       59990,
		Image:       "https://picsum.photos/seed/keyboard/400/300",
		Category:    "electronics",
	},
	{
		ID:          "5",
		Name:        "Board game",
		Description: "Strategy game for 2 to 4 players",
		Price:       24990,
		Image:       "https://picsum.photos/seed/boardgame/400/300",
		Category:    "games",
	},
	{
		ID:          "6",
		Name:        "Game controller",
		Description: "Bluetooth controller for pc and console",
		Price:       34990,
		Image:       "https://picsum.photos/seed/controller/400/300",
		Category:    "games",
	},
	{
		ID:          "7",
		Name:        "Sneakers",
		Description: "Running shoes, last season's model",
		Price:       29990,
		Image:       "https://picsum.photos/seed/sneakers/400/300",
		Category:    "offers",
	},
	{
		ID:          "8",
		Name:        "Smartwatch",
		Description: "Fitness tracker with heart rate monitor",
		Price:       49990,
		Image:       "https://picsum.photos/seed/smartwatch/400/300",
		Category:    "offers",
	},
}

package models

// FeaturedItems returns the curated entries shown on the landing view
// before the user has searched for anything
func FeaturedItems() []Item {
	return []Item{
		{
			ID:     "tt0111161",
			Title:  "The Shawshank Redemption",
			Year:   "1994",
			Poster: "https://images.pexels.com/photos/7991579/pexels-photo-7991579.jpeg?auto=compress&cs=tinysrgb&w=400",
			Type:   KindMovie,
			Rating: "9.3",
		},
		{
			ID:     "tt0068646",
			Title:  "The Godfather",
			Year:   "1972",
			Poster: "https://images.pexels.com/photos/7991580/pexels-photo-7991580.jpeg?auto=compress&cs=tinysrgb&w=400",
			Type:   KindMovie,
			Rating: "9.2",
		},
		{
			ID:     "tt0468569",
			Title:  "The Dark Knight",
			Year:   "2008",
			Poster: "https://images.pexels.com/photos/7991581/pexels-photo-7991581.jpeg?auto=compress&cs=tinysrgb&w=400",
			Type:   KindMovie,
			Rating: "9.0",
		},
	}
}

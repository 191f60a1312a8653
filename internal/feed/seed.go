package feed

import "github.com/starford/pulse/internal/models"

// Seed returns the demo newsletters used when no collection has been
// persisted yet.
func Seed() []models.Newsletter {
	return []models.Newsletter{
		{
			ID:       1,
			Title:    "Q1 Product Roadmap: What's Coming Next",
			Author:   "Sarah Chen",
			Role:     "Product Manager",
			Date:     "2 hours ago",
			Category: "Product Updates",
			Excerpt:  "Exciting new features planned for our marketplace platform, including AI-powered recommendations and enhanced vendor tools...",
			Likes:    24,
			Comments: 2,
			Views:    156,
			Tags:     []string{"roadmap", "AI", "features"},
			Image:    PlaceholderImage,
			CommentsList: []models.Comment{
				{ID: 1, Author: "John Doe", Text: "Great roadmap! Looking forward to the AI features.", Date: "1 hour ago"},
				{ID: 2, Author: "Jane Smith", Text: "When will the vendor tools be available?", Date: "30 minutes ago"},
			},
		},
		{
			ID:       2,
			Title:    "Team Spotlight: Engineering Excellence Awards",
			Author:   "Mike Johnson",
			Role:     "Engineering Lead",
			Date:     "5 hours ago",
			Category: "Team News",
			Excerpt:  "Celebrating our incredible engineers who shipped the new search algorithm and improved platform performance by 40%...",
			Likes:    31,
			Comments: 2,
			Views:    203,
			Tags:     []string{"awards", "engineering", "performance"},
			Image:    PlaceholderImage,
			CommentsList: []models.Comment{
				{ID: 1, Author: "Alex Chen", Text: "Congrats to the team!", Date: "4 hours ago"},
				{ID: 2, Author: "Maria Garcia", Text: "The new search is amazing!", Date: "2 hours ago"},
			},
		},
		{
			ID:       3,
			Title:    "Customer Success Stories: Impact Beyond Numbers",
			Author:   "Emma Rodriguez",
			Role:     "Customer Success",
			Date:     "1 day ago",
			Category: "Customer Stories",
			Excerpt:  "How Good helped small businesses increase their revenue by 300% - real stories from our verified vendors...",
			Likes:    18,
			Comments: 1,
			Views:    89,
			Tags:     []string{"customers", "success", "impact"},
			Image:    PlaceholderImage,
			CommentsList: []models.Comment{
				{ID: 1, Author: "Sam Wilson", Text: "These stories are inspiring!", Date: "20 hours ago"},
			},
		},
	}
}

// Categories lists the post categories offered by the create form.
func Categories() []string {
	return []string{
		"Product Updates",
		"Team News",
		"Customer Stories",
		"Tech Updates",
		"Company News",
	}
}

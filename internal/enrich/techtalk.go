package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"
)

const defaultContentURL = "https://jsonplaceholder.typicode.com"

// TechTalk is a generated talk idea for the internal speaker series.
type TechTalk struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Duration    string `json:"duration"`
	Audience    string `json:"audience"`
	Image       string `json:"image"`
}

var (
	talkCategories = []string{"AI/ML", "Web Development", "Cloud Computing", "Data Science", "Mobile Development", "Blockchain"}
	talkDurations  = []string{"30 minutes", "45 minutes", "1 hour", "1.5 hours"}
	talkAudiences  = []string{"Beginners", "Intermediate", "Advanced", "All Levels"}
	imageSeeds     = []string{"tech", "code", "computer", "programming", "software", "data", "ai", "web"}
)

// TalkGenerator produces tech-talk ideas from placeholder post content.
type TalkGenerator struct {
	client     *http.Client
	contentURL string
	rnd        *rand.Rand
	now        func() time.Time
}

// TalkOption configures a TalkGenerator.
type TalkOption func(*TalkGenerator)

// WithContentURL overrides the placeholder-content endpoint.
func WithContentURL(u string) TalkOption {
	return func(g *TalkGenerator) { g.contentURL = u }
}

// WithTalkHTTPClient overrides the HTTP client.
func WithTalkHTTPClient(c *http.Client) TalkOption {
	return func(g *TalkGenerator) { g.client = c }
}

// WithTalkRand injects the randomness source.
func WithTalkRand(rnd *rand.Rand) TalkOption {
	return func(g *TalkGenerator) { g.rnd = rnd }
}

// NewTalkGenerator returns a generator against the public content API.
func NewTalkGenerator(opts ...TalkOption) *TalkGenerator {
	g := &TalkGenerator{
		client:     &http.Client{Timeout: 10 * time.Second},
		contentURL: defaultContentURL,
		rnd:        rand.New(rand.NewSource(time.Now().UnixNano())),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

type placeholderPost struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// Generate fetches a random placeholder post and reshapes it into a
// talk idea. Any failure yields the canned fallback idea instead of an
// error.
func (g *TalkGenerator) Generate(ctx context.Context) TechTalk {
	post, err := g.fetchPost(ctx)
	if err != nil {
		return g.fallback()
	}

	category := pick(g.rnd, talkCategories)
	seed := pick(g.rnd, imageSeeds)
	return TechTalk{
		Title:       fmt.Sprintf("%s: %s", category, titleFragment(post.Title)),
		Description: truncate(post.Body, 120) + "... This session will cover practical implementations and real-world applications.",
		Category:    category,
		Duration:    pick(g.rnd, talkDurations),
		Audience:    pick(g.rnd, talkAudiences),
		Image:       fmt.Sprintf("https://picsum.photos/seed/%s%d/400/250", seed, g.now().UnixMilli()),
	}
}

func (g *TalkGenerator) fetchPost(ctx context.Context) (placeholderPost, error) {
	u := fmt.Sprintf("%s/posts/%d", g.contentURL, g.rnd.Intn(100)+1)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return placeholderPost{}, err
	}
	resp, err := g.client.Do(req)
	if err != nil {
		return placeholderPost{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return placeholderPost{}, fmt.Errorf("enrich: content status %d", resp.StatusCode)
	}
	var post placeholderPost
	if err := json.NewDecoder(resp.Body).Decode(&post); err != nil {
		return placeholderPost{}, err
	}
	return post, nil
}

func (g *TalkGenerator) fallback() TechTalk {
	category := pick(g.rnd, talkCategories[:3])
	return TechTalk{
		Title:       category + ": Modern Development Practices",
		Description: "Explore cutting-edge technologies and methodologies in this comprehensive tech talk session.",
		Category:    category,
		Duration:    pick(g.rnd, talkDurations),
		Audience:    pick(g.rnd, talkAudiences),
		Image:       fmt.Sprintf("https://picsum.photos/seed/tech%d/400/250", g.now().UnixMilli()),
	}
}

// titleFragment keeps the first four words, capitalized.
func titleFragment(title string) string {
	words := strings.Fields(title)
	if len(words) > 4 {
		words = words[:4]
	}
	out := strings.Join(words, " ")
	if out == "" {
		return "Modern Development Practices"
	}
	first, size := utf8.DecodeRuneInString(out)
	return strings.ToUpper(string(first)) + out[size:]
}

// truncate cuts to at most n runes without splitting a multibyte rune.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

func pick(rnd *rand.Rand, options []string) string {
	return options[rnd.Intn(len(options))]
}

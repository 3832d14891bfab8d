package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"

	"github.com/inkwellhq/ghost-mirror/internal/ghost"
	"github.com/inkwellhq/ghost-mirror/internal/post"
	"github.com/inkwellhq/ghost-mirror/internal/repo"
	"github.com/inkwellhq/ghost-mirror/internal/search"
	"github.com/inkwellhq/ghost-mirror/internal/store"
	"github.com/inkwellhq/ghost-mirror/internal/sync"
)

var (
	dataDir   string
	dbPath    string
	indexPath string
)

// stringList collects a repeatable flag value.
type stringList []string

func (l *stringList) String() string { return strings.Join(*l, ",") }

func (l *stringList) Set(v string) error {
	*l = append(*l, v)
	return nil
}

func main() {
	// Parse global flags
	globalFlags := flag.NewFlagSet("global", flag.ExitOnError)
	dataDirFlag := globalFlags.String("data-dir", "./data", "Directory for database and index files")

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	// Find where the command starts (skip global flags)
	commandIdx := 1
	for i := 1; i < len(os.Args); i++ {
		if !strings.HasPrefix(os.Args[i], "-") {
			commandIdx = i
			break
		}
	}

	if commandIdx > 1 {
		globalFlags.Parse(os.Args[1:commandIdx])
	}

	dataDir = *dataDirFlag
	dbPath = dataDir + "/mirror.db"
	indexPath = dataDir + "/bleve"

	command := os.Args[commandIdx]

	switch command {
	case "sync":
		runSync()
	case "list":
		listFlags := flag.NewFlagSet("list", flag.ExitOnError)
		offset := listFlags.Int("offset", 0, "Window start key")
		limit := listFlags.Int("limit", repo.DefaultPageSize, "Window size")
		listFlags.Parse(os.Args[commandIdx+1:])
		runList(*offset, *limit)
	case "show":
		if len(os.Args) < commandIdx+2 {
			fmt.Println("Error: post ID required")
			fmt.Println("Usage: ghost-mirror [--data-dir=<dir>] show <post-id>")
			os.Exit(1)
		}
		runShow(os.Args[commandIdx+1])
	case "watch":
		if len(os.Args) < commandIdx+2 {
			fmt.Println("Error: post ID required")
			fmt.Println("Usage: ghost-mirror [--data-dir=<dir>] watch <post-id>")
			os.Exit(1)
		}
		runWatch(os.Args[commandIdx+1])
	case "search":
		searchFlags := flag.NewFlagSet("search", flag.ExitOnError)
		limit := searchFlags.Int("limit", 10, "Maximum number of results")
		searchFlags.Parse(os.Args[commandIdx+1:])
		if searchFlags.NArg() < 1 {
			fmt.Println("Error: search query required")
			fmt.Println("Usage: ghost-mirror [--data-dir=<dir>] search [flags] <query>")
			os.Exit(1)
		}
		runSearch(strings.Join(searchFlags.Args(), " "), *limit)
	case "edit":
		editFlags := flag.NewFlagSet("edit", flag.ExitOnError)
		title := editFlags.String("title", "", "New title")
		content := editFlags.String("content", "", "New content (HTML)")
		excerpt := editFlags.String("excerpt", "", "New excerpt")
		var addTags, removeTags stringList
		editFlags.Var(&addTags, "add-tag", "Tag name to add (repeatable)")
		editFlags.Var(&removeTags, "remove-tag", "Tag name to remove (repeatable)")
		editFlags.Parse(os.Args[commandIdx+1:])
		if editFlags.NArg() < 1 {
			fmt.Println("Error: post ID required")
			fmt.Println("Usage: ghost-mirror [--data-dir=<dir>] edit [flags] <post-id>")
			os.Exit(1)
		}
		runEdit(editFlags.Arg(0), *title, *content, *excerpt, addTags, removeTags)
	case "reindex":
		runReindex()
	case "stats":
		runStats()
	case "clear":
		runClear()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("ghost-mirror - Local mirror and edit sync for a Ghost blog")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  ghost-mirror [global-flags] <command> [flags]")
	fmt.Println()
	fmt.Println("Global Flags:")
	fmt.Println("  --data-dir=<dir>  Directory for database and index files (default: ./data)")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  sync                     Pull the full post collection into the local mirror")
	fmt.Println("  list [flags]             List one window of mirrored posts")
	fmt.Println("  show <id>                Print one post with its authors and tags")
	fmt.Println("  watch <id>               Follow one post, reprinting it on every local change")
	fmt.Println("  search [flags] <query>   Full-text search over the mirror")
	fmt.Println("  edit [flags] <id>        Edit a post locally, push it, and reconcile")
	fmt.Println("  reindex                  Rebuild the search index from the database")
	fmt.Println("  stats                    Show mirror statistics")
	fmt.Println("  clear                    Wipe the mirror (posts, authors, tags)")
	fmt.Println()
	fmt.Println("List Flags:")
	fmt.Println("  -offset=<n>       Window start key (default 0)")
	fmt.Println("  -limit=<n>        Window size (default 20)")
	fmt.Println()
	fmt.Println("Edit Flags:")
	fmt.Println("  -title=<s> -content=<s> -excerpt=<s>")
	fmt.Println("  -add-tag=<name>     Add a tag (repeatable, case-insensitive dedup)")
	fmt.Println("  -remove-tag=<name>  Remove a tag by name (repeatable)")
	fmt.Println()
	fmt.Println("Remote configuration (sync and edit):")
	fmt.Println("  GHOST_API_URL     Site root, e.g. https://blog.example.com")
	fmt.Println("  GHOST_TOKEN       Admin API token (or put it in ./token)")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  ghost-mirror sync")
	fmt.Println("  ghost-mirror list -offset=20 -limit=20")
	fmt.Println("  ghost-mirror search \"release notes\"")
	fmt.Println("  ghost-mirror edit -title=\"New title\" -add-tag=Tech 64f1c0a2e4b0")
}

func newClient() *ghost.Client {
	apiURL := os.Getenv("GHOST_API_URL")
	if apiURL == "" {
		log.Fatal("Error: GHOST_API_URL environment variable required")
	}
	token := getToken()
	if token == "" {
		log.Fatal("Error: GHOST_TOKEN environment variable or ./token file required")
	}
	return ghost.NewClient(strings.TrimRight(apiURL, "/"), token)
}

func openStore() *store.Store {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		log.Fatalf("Error creating data directory: %v", err)
	}
	s, err := store.Open(dbPath)
	if err != nil {
		log.Fatalf("Error opening database: %v", err)
	}
	return s
}

func openIndex() *search.Index {
	idx, err := search.Open(indexPath)
	if err != nil {
		log.Fatalf("Error opening search index: %v", err)
	}
	return idx
}

func runSync() {
	client := newClient()
	s := openStore()
	defer s.Close()
	idx := openIndex()
	defer idx.Close()

	worker := sync.NewWorker(client, s, idx, 0)

	stats, err := worker.Sync(context.Background())
	if err != nil {
		log.Fatalf("Error syncing: %v", err)
	}

	fmt.Println()
	fmt.Println("=== Sync Complete ===")
	fmt.Printf("Total posts:   %d\n", stats.TotalPosts)
	fmt.Printf("New:           %d\n", stats.NewPosts)
	fmt.Printf("Updated:       %d\n", stats.UpdatedPosts)
	fmt.Printf("Errors:        %d\n", stats.Errors)
	fmt.Printf("Duration:      %v\n", stats.Duration)
}

func runList(offset, limit int) {
	s := openStore()
	defer s.Close()

	pager := repo.NewPager(s, limit)
	page, err := pager.Load(context.Background(), offset)
	if err != nil {
		log.Fatalf("Error loading page: %v", err)
	}

	if len(page.Posts) == 0 {
		fmt.Println("No posts in this window")
		return
	}

	for _, p := range page.Posts {
		fmt.Printf("%s  [%s]  %s\n", p.ID, p.Status, p.Title)
		if len(p.Tags) > 0 {
			names := make([]string, 0, len(p.Tags))
			for _, t := range p.Tags {
				names = append(names, t.Name)
			}
			fmt.Printf("    tags: %s\n", strings.Join(names, ", "))
		}
	}

	fmt.Println()
	if page.PrevOffset != nil {
		fmt.Printf("Previous window: -offset=%d\n", *page.PrevOffset)
	}
	if page.NextOffset != nil {
		fmt.Printf("Next window:     -offset=%d\n", *page.NextOffset)
	}
}

func printPost(p *post.Post) {
	fmt.Printf("ID:         %s\n", p.ID)
	fmt.Printf("Title:      %s\n", p.Title)
	fmt.Printf("Slug:       %s\n", p.Slug)
	fmt.Printf("Status:     %s\n", p.Status)
	if p.URL != "" {
		fmt.Printf("URL:        %s\n", p.URL)
	}
	if p.PublishedAt != "" {
		fmt.Printf("Published:  %s\n", p.PublishedAt)
	}
	for _, a := range p.Authors {
		fmt.Printf("Author:     %s (%s)\n", a.Name, a.ID)
	}
	for _, t := range p.Tags {
		fmt.Printf("Tag:        %s (%s)\n", t.Name, t.ID)
	}
	if p.Excerpt != "" {
		fmt.Printf("Excerpt:    %s\n", p.Excerpt)
	}
}

func runShow(id string) {
	s := openStore()
	defer s.Close()

	r := repo.New(nil, s, nil)
	p, err := r.Get(context.Background(), id)
	if err != nil {
		log.Fatalf("Error reading post: %v", err)
	}
	if p == nil {
		fmt.Printf("Post not found: %s\n", id)
		os.Exit(1)
	}
	printPost(p)
}

func runWatch(id string) {
	s := openStore()
	defer s.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	r := repo.New(nil, s, nil)
	fmt.Printf("Watching %s (Ctrl-C to stop)...\n\n", id)
	for p := range r.Watch(ctx, id) {
		if p == nil {
			fmt.Println("(post absent)")
			continue
		}
		printPost(p)
		fmt.Println()
	}
}

func runSearch(query string, limit int) {
	idx := openIndex()
	defer idx.Close()

	results, err := idx.Search(query, limit)
	if err != nil {
		log.Fatalf("Error searching: %v", err)
	}

	if len(results) == 0 {
		fmt.Println("No results found")
		return
	}

	fmt.Printf("Found %d results:\n\n", len(results))
	for i, result := range results {
		fmt.Printf("%d. %s\n", i+1, result.Title)
		if result.URL != "" {
			fmt.Printf("   URL: %s\n", result.URL)
		}
		fmt.Printf("   Score: %.3f\n", result.Score)
		if snippets, ok := result.Fragments["Content"]; ok && len(snippets) > 0 {
			fmt.Printf("   Preview: %s\n", snippets[0])
		}
		fmt.Println()
	}
}

func runEdit(id, title, content, excerpt string, addTags, removeTags []string) {
	client := newClient()
	s := openStore()
	defer s.Close()
	idx := openIndex()
	defer idx.Close()

	ctx := context.Background()
	r := repo.New(client, s, idx)

	p, err := r.Get(ctx, id)
	if err != nil {
		log.Fatalf("Error reading post: %v", err)
	}
	if p == nil {
		log.Fatalf("Post %s not in the mirror; run sync first", id)
	}

	sess := post.NewEditSession(*p)
	if title != "" {
		sess.SetTitle(title)
	}
	if content != "" {
		sess.SetContent(content)
	}
	if excerpt != "" {
		sess.SetExcerpt(excerpt)
	}
	for _, name := range addTags {
		if !sess.AddTag(name) {
			fmt.Printf("Tag already present, skipping: %s\n", name)
		}
	}
	for _, name := range removeTags {
		removed := false
		for _, t := range sess.Post().Tags {
			if strings.EqualFold(t.Name, name) {
				removed = sess.RemoveTag(t)
				break
			}
		}
		if !removed {
			fmt.Printf("Tag not present, skipping: %s\n", name)
		}
	}

	if err := r.Save(ctx, sess); err != nil {
		log.Fatalf("Save failed: %v", err)
	}

	fmt.Println("Saved.")
	fmt.Println()
	saved := sess.Post()
	printPost(&saved)
}

func runReindex() {
	s := openStore()
	defer s.Close()
	idx := openIndex()
	defer idx.Close()

	if err := idx.RebuildFromStore(context.Background(), s); err != nil {
		log.Fatalf("Error reindexing: %v", err)
	}

	count, err := idx.Count()
	if err != nil {
		log.Fatalf("Error getting index count: %v", err)
	}
	fmt.Printf("Reindexed %d posts\n", count)
}

func runStats() {
	s := openStore()
	defer s.Close()
	idx := openIndex()
	defer idx.Close()

	dbCount, err := s.CountPosts(context.Background())
	if err != nil {
		log.Fatalf("Error getting database count: %v", err)
	}

	indexCount, err := idx.Count()
	if err != nil {
		log.Fatalf("Error getting index count: %v", err)
	}

	fmt.Println("=== Mirror Statistics ===")
	fmt.Printf("Posts in database: %d\n", dbCount)
	fmt.Printf("Posts in index:    %d\n", indexCount)
}

func runClear() {
	s := openStore()
	defer s.Close()

	ctx := context.Background()
	if err := s.ClearPosts(ctx); err != nil {
		log.Fatalf("Error clearing posts: %v", err)
	}
	if err := s.ClearTags(ctx); err != nil {
		log.Fatalf("Error clearing tags: %v", err)
	}
	if err := s.ClearAuthors(ctx); err != nil {
		log.Fatalf("Error clearing authors: %v", err)
	}
	fmt.Println("Mirror cleared")
}

func getToken() string {
	// Try environment variable first
	if token := os.Getenv("GHOST_TOKEN"); token != "" {
		return token
	}

	// Try reading from token file
	tokenBytes, err := os.ReadFile("./token")
	if err != nil {
		return ""
	}

	return strings.TrimSpace(string(tokenBytes))
}

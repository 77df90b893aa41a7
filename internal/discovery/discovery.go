package discovery

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	"github.com/sourcegraph/conc/pool"

	"github.com/0unveiled/github-analyzer/internal/github"
	"github.com/0unveiled/github-analyzer/internal/resilience"
	"github.com/0unveiled/github-analyzer/internal/types"
)

// Lister is the slice of the GitHub client discovery needs
type Lister interface {
	ListContents(ctx context.Context, owner, repo, path string) ([]github.ContentItem, error)
	GetFileContent(ctx context.Context, owner, repo, path string) (string, error)
}

// Config controls traversal and fetch limits
type Config struct {
	MaxFiles    int
	MaxFileSize int
	Concurrency int
}

// Result holds fetched files plus the audit trail of everything seen
type Result struct {
	Files      []types.FileInfo
	Discovered []string
	Skipped    int
}

// Discoverer walks a repository tree breadth-first and fetches the files
// worth analyzing
type Discoverer struct {
	client Lister
	cfg    Config
}

func New(client Lister, cfg Config) *Discoverer {
	if cfg.MaxFiles <= 0 {
		cfg.MaxFiles = 1000
	}
	if cfg.MaxFileSize <= 0 {
		cfg.MaxFileSize = 1024 * 1024
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 8
	}
	return &Discoverer{client: client, cfg: cfg}
}

// Discover walks the tree, prioritizes candidates, and fetches content for
// the analyzable ones up to MaxFiles
func (d *Discoverer) Discover(ctx context.Context, owner, repo string) (*Result, error) {
	candidates, err := d.walk(ctx, owner, repo)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Discovered: make([]string, 0, len(candidates)),
	}

	// Pick the fetch set in priority order first so the worker pool can
	// run without ordering concerns
	type fetchTask struct {
		item  github.ContentItem
		index int
	}
	var tasks []fetchTask

	for _, item := range candidates {
		result.Discovered = append(result.Discovered, item.Path)

		if len(tasks) >= d.cfg.MaxFiles {
			continue
		}
		if shouldSkipPath(item.Path) {
			result.Skipped++
			continue
		}
		ext := extensionOf(item.Name)
		if !isAnalyzable(ext) {
			result.Skipped++
			continue
		}
		if item.Size > d.cfg.MaxFileSize {
			slog.Debug("Skipping oversized file", "path", item.Path, "size", item.Size)
			result.Skipped++
			continue
		}
		tasks = append(tasks, fetchTask{item: item, index: len(tasks)})
	}

	fetched := make([]*types.FileInfo, len(tasks))

	p := pool.New().WithMaxGoroutines(d.cfg.Concurrency)
	for _, task := range tasks {
		p.Go(func() {
			var content string
			err := resilience.RetryWithPolicy(ctx, resilience.FastRetryPolicy, func() error {
				var fetchErr error
				content, fetchErr = d.client.GetFileContent(ctx, owner, repo, task.item.Path)
				return fetchErr
			})
			if err != nil {
				slog.Warn("Failed to fetch file content", "path", task.item.Path, "error", err)
				return
			}
			if content == "" {
				return
			}
			fetched[task.index] = &types.FileInfo{
				Path:      task.item.Path,
				Name:      task.item.Name,
				Extension: extensionOf(task.item.Name),
				Size:      task.item.Size,
				SHA:       task.item.SHA,
				Language:  LanguageForExtension(extensionOf(task.item.Name)),
				Content:   content,
			}
		})
	}
	p.Wait()

	for _, f := range fetched {
		if f == nil {
			result.Skipped++
			continue
		}
		result.Files = append(result.Files, *f)
	}

	slog.Info("File discovery complete",
		"owner", owner, "repo", repo,
		"discovered", len(result.Discovered),
		"fetched", len(result.Files),
		"skipped", result.Skipped)

	return result, nil
}

// walk runs the breadth-first traversal and returns prioritized candidates
func (d *Discoverer) walk(ctx context.Context, owner, repo string) ([]github.ContentItem, error) {
	var all []github.ContentItem
	queue := []string{""}
	visited := make(map[string]bool)

	budget := d.cfg.MaxFiles * 3

	for len(queue) > 0 && len(all) < budget {
		current := queue[0]
		queue = queue[1:]

		if visited[current] {
			continue
		}
		visited[current] = true

		items, err := d.client.ListContents(ctx, owner, repo, current)
		if err != nil {
			if current == "" {
				// Nothing to analyze without a root listing
				return nil, err
			}
			slog.Warn("Failed to list directory", "path", current, "error", err)
			continue
		}

		for _, item := range items {
			switch item.Type {
			case "file":
				all = append(all, item)
			case "dir":
				if !shouldSkipDir(item.Path) {
					queue = append(queue, item.Path)
				}
			}
		}
	}

	sort.Slice(all, func(i, j int) bool {
		ai := analyzableRank(all[i])
		aj := analyzableRank(all[j])
		if ai != aj {
			return ai < aj
		}
		di := strings.Count(all[i].Path, "/")
		dj := strings.Count(all[j].Path, "/")
		if di != dj {
			return di < dj
		}
		return all[i].Name < all[j].Name
	})

	// Keep extra candidates beyond MaxFiles so path filtering still has
	// enough to choose from
	limit := d.cfg.MaxFiles * 2
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func analyzableRank(item github.ContentItem) int {
	if isAnalyzable(extensionOf(item.Name)) {
		return 0
	}
	return 1
}

func extensionOf(name string) string {
	idx := strings.LastIndex(name, ".")
	if idx < 0 || idx == len(name)-1 {
		return ""
	}
	return strings.ToLower(name[idx+1:])
}

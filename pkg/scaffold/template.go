package scaffold

import (
	"fmt"
	"os"
	"path/filepath"
)

// Project describes a scaffolded project.
type Project struct {
	Name string
	Dir  string
}

// Generate renders a minimal project skeleton under dir/name. The name is
// validated first; an existing target directory is rejected.
func Generate(dir, name string) (*Project, error) {
	if err := ValidateProjectName(name); err != nil {
		return nil, err
	}

	target := filepath.Join(dir, name)
	if _, err := os.Stat(target); err == nil {
		return nil, fmt.Errorf("target directory %s already exists", target)
	}

	files := map[string]string{
		"go.mod":       fmt.Sprintf("module %s\n\ngo 1.24.0\n", name),
		"main.go":      mainTemplate(name),
		"README.md":    fmt.Sprintf("# %s\n\nScaffolded with allframe.\n", name),
		".env.example": "# Environment configuration\n",
		".gitignore":   "*.db\n.env\n",
	}

	for path, content := range files {
		full := filepath.Join(target, path)
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			return nil, fmt.Errorf("create project directory: %w", err)
		}
		if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
			return nil, fmt.Errorf("write %s: %w", path, err)
		}
	}

	return &Project{Name: name, Dir: target}, nil
}

func mainTemplate(name string) string {
	return fmt.Sprintf(`package main

import (
	"context"
	"fmt"

	"github.com/all-source-os/allframe/core/router"
)

func main() {
	r := router.New()
	r.Register("hello", func(ctx context.Context, payload string) (string, error) {
		return "Hello from %s!", nil
	})

	rest := router.NewRESTAdapter(r.Registry())
	_ = rest.Route("GET", "/hello", "hello")
	r.AddAdapter(rest)

	out, err := r.RouteRequest(context.Background(), "rest", "GET /hello")
	if err != nil {
		panic(err)
	}
	fmt.Println(out)
}
`, name)
}

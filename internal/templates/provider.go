package templates

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"os"
)

//go:embed assets/*.png
var embeddedAssets embed.FS

// AssetProvider supplies the raw bytes of a named template image. Providers
// are read-only and must be safe for concurrent use.
type AssetProvider interface {
	LoadTemplateBytes(ctx context.Context, name string) ([]byte, error)
}

// FSProvider reads templates from a file system.
type FSProvider struct {
	fsys fs.FS
}

// NewFSProvider returns a provider over fsys.
func NewFSProvider(fsys fs.FS) *FSProvider {
	return &FSProvider{fsys: fsys}
}

// NewEmbeddedProvider returns a provider over the templates compiled into
// the binary.
func NewEmbeddedProvider() *FSProvider {
	sub, err := fs.Sub(embeddedAssets, "assets")
	if err != nil {
		// The directory is fixed at build time.
		panic(fmt.Sprintf("templates: embedded assets: %v", err))
	}
	return NewFSProvider(sub)
}

// NewDirProvider returns a provider reading from dir on disk.
func NewDirProvider(dir string) *FSProvider {
	return NewFSProvider(os.DirFS(dir))
}

// LoadTemplateBytes implements AssetProvider.
func (p *FSProvider) LoadTemplateBytes(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := fs.ReadFile(p.fsys, name)
	if err != nil {
		return nil, fmt.Errorf("failed to read template %s: %w", name, err)
	}
	return data, nil
}

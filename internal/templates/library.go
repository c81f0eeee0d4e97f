package templates

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/ironsheep/sheet-omr/internal/config"
	apperrors "github.com/ironsheep/sheet-omr/internal/errors"
	sheetimg "github.com/ironsheep/sheet-omr/internal/imaging"
	"github.com/ironsheep/sheet-omr/internal/logger"
)

// Library materialises a catalog of templates from an asset provider.
//
// It holds no decoded images: every LoadAll call decodes fresh copies, so
// concurrent scans never share template buffers.
type Library struct {
	provider AssetProvider
	catalog  []CatalogEntry
}

// NewLibrary returns a library over provider. A nil catalog means
// DefaultCatalog.
func NewLibrary(provider AssetProvider, catalog []CatalogEntry) *Library {
	if catalog == nil {
		catalog = DefaultCatalog()
	}
	return &Library{provider: provider, catalog: append([]CatalogEntry(nil), catalog...)}
}

// NewLibraryFromConfig selects the asset provider named by cfg.TemplateSource
// and the catalog from cfg.TemplateCatalog.
func NewLibraryFromConfig(cfg *config.Config) (*Library, error) {
	var provider AssetProvider
	switch cfg.TemplateSource {
	case config.TemplateSourceEmbedded, "":
		provider = NewEmbeddedProvider()
	case config.TemplateSourceDir:
		provider = NewDirProvider(cfg.TemplateDir)
	case config.TemplateSourceAzure:
		p, err := NewAzureBlobProvider(cfg.AzureConnectionString, cfg.AzureTemplateContainer)
		if err != nil {
			return nil, apperrors.NewTemplateLoadError("cannot reach template store", err)
		}
		provider = p
	default:
		return nil, apperrors.NewTemplateLoadError(fmt.Sprintf("unknown template source %q", cfg.TemplateSource), nil)
	}

	var catalog []CatalogEntry
	if cfg.TemplateCatalog != "" {
		c, err := ParseCatalog(cfg.TemplateCatalog)
		if err != nil {
			return nil, apperrors.NewTemplateLoadError("invalid template catalog", err)
		}
		catalog = c
	}
	return NewLibrary(provider, catalog), nil
}

// Catalog returns a copy of the library's catalog.
func (l *Library) Catalog() []CatalogEntry {
	return append([]CatalogEntry(nil), l.catalog...)
}

// LoadAll fetches and decodes every catalog entry, in catalog order.
//
// The catalog ships with the application, so any failure is a TemplateLoad
// error rather than something a caller is expected to recover from.
func (l *Library) LoadAll(ctx context.Context) ([]*Template, error) {
	out := make([]*Template, 0, len(l.catalog))
	for _, entry := range l.catalog {
		data, err := l.provider.LoadTemplateBytes(ctx, entry.Name)
		if err != nil {
			return nil, apperrors.NewTemplateLoadError(fmt.Sprintf("template %s unavailable", entry.Name), err)
		}
		img, err := sheetimg.Decode(data)
		if err != nil {
			return nil, apperrors.NewTemplateLoadError(fmt.Sprintf("template %s is not a valid image", entry.Name), err)
		}

		t := &Template{Name: entry.Name, Length: entry.Length, Image: img}
		logger.WithFields(logrus.Fields{
			"template": t.Name,
			"length":   t.Length.String(),
			"width":    t.Width(),
			"height":   t.Height(),
		}).Debug("Template loaded")
		out = append(out, t)
	}
	return out, nil
}

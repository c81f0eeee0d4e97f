package templates

import (
	"context"
	"fmt"
	"io"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
)

// AzureBlobProvider reads templates from an Azure Storage container, one blob
// per template name.
type AzureBlobProvider struct {
	client    *azblob.Client
	container string
}

// NewAzureBlobProvider connects to the storage account described by
// connectionString. No request is made until a template is loaded.
func NewAzureBlobProvider(connectionString, container string) (*AzureBlobProvider, error) {
	client, err := azblob.NewClientFromConnectionString(connectionString, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create blob client: %w", err)
	}
	return &AzureBlobProvider{client: client, container: container}, nil
}

// LoadTemplateBytes implements AssetProvider.
func (p *AzureBlobProvider) LoadTemplateBytes(ctx context.Context, name string) ([]byte, error) {
	resp, err := p.client.DownloadStream(ctx, p.container, name, nil)
	if err != nil {
		return nil, fmt.Errorf("download of %s/%s failed: %w", p.container, name, err)
	}

	body := resp.Body
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s/%s: %w", p.container, name, err)
	}
	return data, nil
}

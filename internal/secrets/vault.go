package secrets

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/security/keyvault/azsecrets"
	"go.uber.org/zap"
)

const defaultCacheTTL = 5 * time.Minute

// VaultClient reads secrets from Azure Key Vault
type VaultClient struct {
	client *azsecrets.Client
	logger *zap.Logger
}

// NewVaultClient connects to https://<vaultName>.vault.azure.net using
// DefaultAzureCredential (environment, managed identity or az cli login).
func NewVaultClient(vaultName string, logger *zap.Logger) (*VaultClient, error) {
	if vaultName == "" {
		return nil, fmt.Errorf("vault name is required")
	}

	cred, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create Azure credential: %w", err)
	}

	vaultURL := fmt.Sprintf("https://%s.vault.azure.net/", vaultName)
	client, err := azsecrets.NewClient(vaultURL, cred, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create Key Vault client: %w", err)
	}

	logger.Info("key vault client initialized", zap.String("vault_url", vaultURL))
	return &VaultClient{client: client, logger: logger}, nil
}

// Fetch returns the latest version of the named secret
func (v *VaultClient) Fetch(ctx context.Context, name string) (string, error) {
	resp, err := v.client.GetSecret(ctx, name, "", nil)
	if err != nil {
		v.logger.Warn("key vault lookup failed",
			zap.String("secret_name", name),
			zap.Error(err))
		return "", err
	}
	if resp.Value == nil {
		return "", ErrSecretNotFound
	}
	return *resp.Value, nil
}

type cachedSecret struct {
	value     string
	expiresAt time.Time
}

// CachingFetcher memoises another fetcher's successful lookups for a TTL
type CachingFetcher struct {
	next Fetcher
	ttl  time.Duration
	now  func() time.Time

	mu    sync.Mutex
	cache map[string]cachedSecret
}

// NewCachingFetcher wraps next. A zero ttl uses five minutes.
func NewCachingFetcher(next Fetcher, ttl time.Duration) *CachingFetcher {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &CachingFetcher{
		next:  next,
		ttl:   ttl,
		now:   time.Now,
		cache: make(map[string]cachedSecret),
	}
}

func (c *CachingFetcher) Fetch(ctx context.Context, name string) (string, error) {
	c.mu.Lock()
	if hit, ok := c.cache[name]; ok && c.now().Before(hit.expiresAt) {
		c.mu.Unlock()
		return hit.value, nil
	}
	c.mu.Unlock()

	value, err := c.next.Fetch(ctx, name)
	if err != nil {
		return "", err
	}

	c.mu.Lock()
	c.cache[name] = cachedSecret{value: value, expiresAt: c.now().Add(c.ttl)}
	c.mu.Unlock()
	return value, nil
}

// Clear drops every cached value
func (c *CachingFetcher) Clear() {
	c.mu.Lock()
	c.cache = make(map[string]cachedSecret)
	c.mu.Unlock()
}

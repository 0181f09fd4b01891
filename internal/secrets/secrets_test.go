package secrets

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/security/keyvault/azsecrets"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeVault struct {
	values map[string]string
	calls  int
}

func (f *fakeVault) GetSecret(_ context.Context, name, _ string, _ *azsecrets.GetSecretOptions) (azsecrets.GetSecretResponse, error) {
	f.calls++
	v, ok := f.values[name]
	if !ok {
		return azsecrets.GetSecretResponse{}, errors.New("SecretNotFound")
	}
	return azsecrets.GetSecretResponse{Secret: azsecrets.Secret{Value: &v}}, nil
}

func TestResolveSource(t *testing.T) {
	assert.Equal(t, SourceEnvironment, ResolveSource(SourceAuto, "development"))
	assert.Equal(t, SourceEnvironment, ResolveSource(SourceAuto, ""))
	assert.Equal(t, SourceVault, ResolveSource(SourceAuto, "production"))
	assert.Equal(t, SourceEnvironment, ResolveSource(SourceEnvironment, "production"))
}

func TestVaultClient_Cache(t *testing.T) {
	fake := &fakeVault{values: map[string]string{"jwt-secret": "s3cret"}}
	v := newVaultClient(fake, &VaultConfig{VaultName: "kv", CacheEnabled: true, CacheTTL: time.Minute}, zap.NewNop())
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	v.now = func() time.Time { return now }

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		got, err := v.GetSecret(ctx, "jwt-secret")
		require.NoError(t, err)
		assert.Equal(t, "s3cret", got)
	}
	assert.Equal(t, 1, fake.calls)

	now = now.Add(2 * time.Minute)
	_, err := v.GetSecret(ctx, "jwt-secret")
	require.NoError(t, err)
	assert.Equal(t, 2, fake.calls)

	v.ClearCache()
	_, _ = v.GetSecret(ctx, "jwt-secret")
	assert.Equal(t, 3, fake.calls)

	_, err = v.GetSecret(ctx, "missing")
	assert.Error(t, err)
}

func TestProvider_Environment(t *testing.T) {
	env := map[string]string{"JWT_SECRET": "from-env", "jwt-secret": "direct"}
	p := &Provider{source: SourceEnvironment, logger: zap.NewNop(), getenv: func(k string) string { return env[k] }}
	ctx := context.Background()

	got, err := p.GetSecretOrEnv(ctx, "jwt-secret", "JWT_SECRET")
	require.NoError(t, err)
	assert.Equal(t, "from-env", got)

	got, err = p.GetSecretOrEnv(ctx, "jwt-secret", "UNSET")
	require.NoError(t, err)
	assert.Equal(t, "direct", got)

	_, err = p.GetSecret(ctx, "nothing")
	assert.Error(t, err)
	assert.False(t, p.IsVaultEnabled())
}

func TestProvider_VaultOverride(t *testing.T) {
	fake := &fakeVault{values: map[string]string{"whatsapp-access-token": "vault-token"}}
	p := &Provider{
		source: SourceVault,
		vault:  newVaultClient(fake, &VaultConfig{VaultName: "kv"}, zap.NewNop()),
		logger: zap.NewNop(),
		getenv: func(string) string { return "" },
	}

	got, err := p.GetSecretOrEnv(context.Background(), "whatsapp-access-token", "WHATSAPP_ACCESS_TOKEN")
	require.NoError(t, err)
	assert.Equal(t, "vault-token", got)
	assert.True(t, p.IsVaultEnabled())
}

func TestNewProvider_VaultRequiresName(t *testing.T) {
	_, err := NewProvider(&ProviderConfig{Source: SourceVault}, zap.NewNop())
	assert.Error(t, err)

	p, err := NewProvider(&ProviderConfig{Source: SourceAuto, Environment: "development"}, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, SourceEnvironment, p.Source())
}

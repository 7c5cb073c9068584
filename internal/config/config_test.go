package config

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakeReader struct {
	vals  map[string]string
	err   error
	calls [][]string
}

func (f *fakeReader) GetParameters(_ context.Context, names ...string) (map[string]string, error) {
	f.calls = append(f.calls, names)
	if f.err != nil {
		return nil, f.err
	}
	out := make(map[string]string, len(names))
	for _, n := range names {
		if v, ok := f.vals[n]; ok {
			out[n] = v
		}
	}
	return out, nil
}

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"PORT", "LOG_LEVEL", "MOBSF_URL", "MOBSF_API_KEY", "MOBSF_TIMEOUT", "OPENAI_API_KEY", "OPENAI_BASE_URL", "OPENAI_MODEL", "OPENAI_TIMEOUT", "CORS_ALLOWED_ORIGINS", "PARAM_PREFIX"} {
		t.Setenv(key, "")
	}

	cfg := Load()
	require.Equal(t, "8080", cfg.Port)
	require.Equal(t, "info", cfg.LogLevel)
	require.Equal(t, "http://mobsf:8000", cfg.MobSFURL)
	require.Equal(t, 30*time.Second, cfg.MobSFTimeout)
	require.Equal(t, "gpt-4o", cfg.OpenAIModel)
	require.Equal(t, 2*time.Minute, cfg.OpenAITimeout)
	require.Empty(t, cfg.CORSAllowedOrigins)
	require.Empty(t, cfg.ParamPrefix)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "5000")
	t.Setenv("MOBSF_URL", "http://localhost:8000")
	t.Setenv("MOBSF_API_KEY", "mobsf-key")
	t.Setenv("MOBSF_TIMEOUT", "5s")
	t.Setenv("OPENAI_API_KEY", "sk-env")
	t.Setenv("OPENAI_MODEL", "gpt-4o-mini")
	t.Setenv("OPENAI_TIMEOUT", "not-a-duration")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://localhost:3000, ,https://mobsf.example.com")
	t.Setenv("PARAM_PREFIX", " /mobsf-sidecar/ ")

	cfg := Load()
	require.Equal(t, "5000", cfg.Port)
	require.Equal(t, "http://localhost:8000", cfg.MobSFURL)
	require.Equal(t, "mobsf-key", cfg.MobSFAPIKey)
	require.Equal(t, 5*time.Second, cfg.MobSFTimeout)
	require.Equal(t, "sk-env", cfg.OpenAIAPIKey)
	require.Equal(t, "gpt-4o-mini", cfg.OpenAIModel)
	require.Equal(t, 2*time.Minute, cfg.OpenAITimeout)
	require.Equal(t, []string{"http://localhost:3000", "https://mobsf.example.com"}, cfg.CORSAllowedOrigins)
	require.Equal(t, "/mobsf-sidecar", cfg.ParamPrefix)
}

func TestValidate(t *testing.T) {
	cfg := &Config{MobSFURL: "http://mobsf:8000", OpenAIModel: "gpt-4o"}
	err := cfg.Validate()
	require.Error(t, err)
	require.Contains(t, err.Error(), "OPENAI_API_KEY")

	cfg.OpenAIAPIKey = "sk-test"
	require.NoError(t, cfg.Validate())
}

func TestResolveSecrets_NoPrefixIsNoop(t *testing.T) {
	cfg := &Config{}
	require.NoError(t, cfg.ResolveSecrets(context.Background(), nil))
	require.Empty(t, cfg.OpenAIAPIKey)
}

func TestResolveSecrets_FillsMissingKeys(t *testing.T) {
	g := &fakeReader{vals: map[string]string{
		"/prefix/mobsf-api-key": " mobsf-from-ssm\n",
		"/prefix/open-ai-token": `{"token":"sk-from-ssm"}`,
	}}
	cfg := &Config{ParamPrefix: "/prefix"}
	require.NoError(t, cfg.ResolveSecrets(context.Background(), g))
	require.Equal(t, "mobsf-from-ssm", cfg.MobSFAPIKey)
	require.Equal(t, "sk-from-ssm", cfg.OpenAIAPIKey)
	require.Equal(t, [][]string{{"/prefix/mobsf-api-key", "/prefix/open-ai-token"}}, g.calls)
}

func TestResolveSecrets_KeepsEnvironmentKeys(t *testing.T) {
	g := &fakeReader{vals: map[string]string{"/prefix/open-ai-token": `{"token":"sk-from-ssm"}`}}
	cfg := &Config{ParamPrefix: "/prefix", MobSFAPIKey: "env-mobsf", OpenAIAPIKey: "sk-env"}
	require.NoError(t, cfg.ResolveSecrets(context.Background(), g))
	require.Equal(t, "env-mobsf", cfg.MobSFAPIKey)
	require.Equal(t, "sk-env", cfg.OpenAIAPIKey)
	require.Empty(t, g.calls)
}

func TestResolveSecrets_Errors(t *testing.T) {
	cfg := &Config{ParamPrefix: "/prefix"}
	err := cfg.ResolveSecrets(context.Background(), &fakeReader{err: errors.New("ssm unavailable")})
	require.ErrorContains(t, err, "ssm unavailable")

	cfg = &Config{ParamPrefix: "/prefix", MobSFAPIKey: "set"}
	err = cfg.ResolveSecrets(context.Background(), &fakeReader{vals: map[string]string{"/prefix/open-ai-token": `{"broken`}})
	require.ErrorContains(t, err, "unmarshal")

	cfg = &Config{ParamPrefix: "/prefix", MobSFAPIKey: "set"}
	err = cfg.ResolveSecrets(context.Background(), &fakeReader{vals: map[string]string{"/prefix/open-ai-token": `{"other":"value"}`}})
	require.ErrorContains(t, err, "API token is empty")

	cfg = &Config{ParamPrefix: "/prefix"}
	require.Error(t, cfg.ResolveSecrets(context.Background(), nil))

	cfg = &Config{ParamPrefix: "/prefix", MobSFAPIKey: "set", OpenAIAPIKey: "set"}
	require.NoError(t, cfg.ResolveSecrets(context.Background(), nil))
}

package main

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erc7824/solrpc/pkg/sign"
	"github.com/erc7824/solrpc/pkg/txn"
)

func TestParseSOL(t *testing.T) {
	tcs := []struct {
		in      string
		want    uint64
		wantErr bool
	}{
		{in: "1", want: 1_000_000_000},
		{in: "0.5", want: 500_000_000},
		{in: "0.000000001", want: 1},
		{in: "18446744073.709551615", want: 18446744073709551615},
		{in: "0.0000000001", wantErr: true},
		{in: "18446744073.709551616", wantErr: true},
		{in: "0", wantErr: true},
		{in: "-1", wantErr: true},
		{in: "abc", wantErr: true},
	}

	for _, tc := range tcs {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseSOL(tc.in)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestFormatSOL(t *testing.T) {
	assert.Equal(t, "1", FormatSOL(1_000_000_000))
	assert.Equal(t, "0.5", FormatSOL(500_000_000))
	assert.Equal(t, "0.000000001", FormatSOL(1))
	assert.Equal(t, "0", FormatSOL(0))
}

func setTestEnv(t *testing.T, httpURL string) {
	t.Helper()

	t.Setenv("SOLRPC_HTTP_URL", httpURL)
	t.Setenv("SOLRPC_WS_URL", "ws://127.0.0.1:1")
	t.Setenv("SOLRPC_DATABASE_DRIVER", "sqlite")
	t.Setenv("SOLRPC_DATABASE_URL", "file:"+filepath.Join(t.TempDir(), "journal.db"))
	t.Setenv("SOLRPC_PRIVATE_KEY", "0x"+strings.Repeat("01", 32))
	t.Setenv("LOG_LEVEL", "error")
}

func TestLoadConfig(t *testing.T) {
	setTestEnv(t, "http://node.example:8899")
	t.Setenv("SOLRPC_REQUEST_TIMEOUT", "3s")

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "http://node.example:8899", cfg.HTTPURL)
	assert.Equal(t, 3*time.Second, cfg.RequestTimeout)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "console", cfg.Log.Format)

	signer, err := cfg.Signer()
	require.NoError(t, err)
	assert.False(t, signer.PublicKey().IsZero())

	cfg.PrivateKey = ""
	_, err = cfg.Signer()
	assert.ErrorIs(t, err, ErrNoPrivateKey)
}

func TestLoadConfig_Invalid(t *testing.T) {
	setTestEnv(t, "not a url")

	_, err := LoadConfig("")
	assert.Error(t, err)
}

func TestLoadConfig_EnvFile(t *testing.T) {
	setTestEnv(t, "http://node.example:8899")
	// Restored on cleanup; the env file sets it for real.
	t.Setenv("SOLRPC_METRICS_ADDR", "")
	require.NoError(t, os.Unsetenv("SOLRPC_METRICS_ADDR"))

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("SOLRPC_METRICS_ADDR=:9191\nSOLRPC_HTTP_URL=http://ignored:1\n"), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, ":9191", cfg.MetricsAddr)
	// Variables already in the environment win.
	assert.Equal(t, "http://node.example:8899", cfg.HTTPURL)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
}

// fakeNode answers the HTTP JSON-RPC methods the CLI uses.
type fakeNode struct {
	blockhash txn.Hash

	mu   sync.Mutex
	sent []string
}

func (n *fakeNode) Sent() []string {
	n.mu.Lock()
	defer n.mu.Unlock()

	return append([]string(nil), n.sent...)
}

func (n *fakeNode) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var env struct {
		ID     uint64            `json:"id"`
		Method string            `json:"method"`
		Params []json.RawMessage `json:"params"`
	}
	if err := json.NewDecoder(r.Body).Decode(&env); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var result string
	switch env.Method {
	case "getHealth":
		result = `"ok"`
	case "getRecentBlockhash":
		result = fmt.Sprintf(`{"context":{"slot":9},"value":{"blockhash":%q,"feeCalculator":{"lamportsPerSignature":5000}}}`, n.blockhash.String())
	case "getAccountInfo":
		result = fmt.Sprintf(`{"context":{"slot":9},"value":{"data":["","base64"],"executable":false,"lamports":2500000000,"owner":%q,"rentEpoch":1}}`, sign.PublicKey{}.String())
	case "sendTransaction":
		var encoded string
		if err := json.Unmarshal(env.Params[0], &encoded); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		raw, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil || len(raw) < 1+sign.SignatureSize {
			http.Error(w, "bad transaction", http.StatusBadRequest)
			return
		}
		var sig sign.Signature
		copy(sig[:], raw[1:1+sign.SignatureSize])
		n.mu.Lock()
		n.sent = append(n.sent, sig.String())
		n.mu.Unlock()
		result = fmt.Sprintf("%q", sig.String())
	default:
		fmt.Fprintf(w, `{"jsonrpc":"2.0","id":%d,"error":{"code":-32601,"message":"Method not found"}}`, env.ID)
		return
	}
	fmt.Fprintf(w, `{"jsonrpc":"2.0","id":%d,"result":%s}`, env.ID, result)
}

func runApp(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	app := newApp()
	app.Writer = &out
	app.ErrWriter = &out
	err := app.Run(append([]string{"solrpc", "--env-file", ""}, args...))
	return out.String(), err
}

func TestApp_Health(t *testing.T) {
	server := httptest.NewServer(&fakeNode{})
	defer server.Close()
	setTestEnv(t, server.URL)

	out, err := runApp(t, "health")
	require.NoError(t, err)
	assert.Equal(t, "ok\n", out)
}

func TestApp_Account(t *testing.T) {
	server := httptest.NewServer(&fakeNode{})
	defer server.Close()
	setTestEnv(t, server.URL)

	out, err := runApp(t, "account", sign.PublicKey{3}.String())
	require.NoError(t, err)
	assert.Contains(t, out, "2.5 SOL")
	assert.Contains(t, out, "Rent epoch:")

	_, err = runApp(t, "account", "not-a-key")
	assert.Error(t, err)
}

func TestApp_Blockhash(t *testing.T) {
	node := &fakeNode{blockhash: txn.Hash{8}}
	server := httptest.NewServer(node)
	defer server.Close()
	setTestEnv(t, server.URL)

	out, err := runApp(t, "blockhash")
	require.NoError(t, err)
	assert.Contains(t, out, node.blockhash.String())
	assert.Contains(t, out, "5000 lamports per signature")
}

func TestApp_TransferAndHistory(t *testing.T) {
	node := &fakeNode{blockhash: txn.Hash{8}}
	server := httptest.NewServer(node)
	defer server.Close()
	setTestEnv(t, server.URL)

	out, err := runApp(t, "transfer", "--to", sign.PublicKey{4}.String(), "--amount", "0.25")
	require.NoError(t, err)
	sent := node.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, sent[0]+"\n", out)

	out, err = runApp(t, "history")
	require.NoError(t, err)
	assert.Contains(t, out, sent[0])
	assert.Contains(t, out, "0.25")
	assert.Contains(t, out, "pending")

	out, err = runApp(t, "history", "--status", "confirmed")
	require.NoError(t, err)
	assert.NotContains(t, out, sent[0])

	_, err = runApp(t, "history", "--status", "lost")
	assert.Error(t, err)
}

func TestApp_TransferInvalidAmount(t *testing.T) {
	node := &fakeNode{}
	server := httptest.NewServer(node)
	defer server.Close()
	setTestEnv(t, server.URL)

	_, err := runApp(t, "transfer", "--to", sign.PublicKey{4}.String(), "--amount", "0.0000000001")
	assert.Error(t, err)
	assert.Empty(t, node.Sent())
}

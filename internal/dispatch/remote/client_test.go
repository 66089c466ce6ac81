// internal/dispatch/remote/client_test.go
package remote

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/pem"
	"errors"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/ssh"

	"github.com/tamzrod/solax-monitor/internal/alert"
)

func TestParseTarget(t *testing.T) {
	tests := []struct {
		in, defUser    string
		wantUser, want string
		wantErr        bool
	}{
		{"10.0.0.2", "root", "root", "10.0.0.2:22", false},
		{"admin@10.0.0.2", "root", "admin", "10.0.0.2:22", false},
		{"admin@10.0.0.2:2222", "root", "admin", "10.0.0.2:2222", false},
		{"nas.local:2200", "root", "root", "nas.local:2200", false},
		{"[fe80::1]", "root", "root", "[fe80::1]:22", false},
		{"  host  ", "root", "root", "host:22", false},
		{"", "root", "", "", true},
		{"@host", "root", "", "", true},
		{"host", "", "", "", true},
	}

	for _, tt := range tests {
		user, addr, err := ParseTarget(tt.in, tt.defUser)
		if tt.wantErr {
			assert.Error(t, err, "ParseTarget(%q)", tt.in)
			continue
		}
		require.NoError(t, err, "ParseTarget(%q)", tt.in)
		assert.Equal(t, tt.wantUser, user, "user for %q", tt.in)
		assert.Equal(t, tt.want, addr, "addr for %q", tt.in)
	}
}

func TestCommandResult(t *testing.T) {
	assert.NoError(t, commandResult("h:22", nil, nil))
	assert.NoError(t, commandResult("h:22", nil, &ssh.ExitMissingError{}))

	err := commandResult("h:22", []byte("  permission denied \n"), &ssh.ExitError{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "permission denied")

	err = commandResult("h:22", nil, errors.New("broken pipe"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken pipe")
}

func TestNew_BadKeyPath(t *testing.T) {
	_, err := New(Config{User: "root", KeyPath: filepath.Join(t.TempDir(), "missing")})
	assert.Error(t, err)
}

func TestShutdown_WithoutKey(t *testing.T) {
	c, err := New(Config{User: "root", ShutdownCommand: "sudo poweroff"})
	require.NoError(t, err)
	assert.Error(t, c.Shutdown(context.Background(), "127.0.0.1"))
}

// ---- in-process SSH server ----

type testServer struct {
	addr string
	cmds chan string
	user chan string
}

// startServer accepts either the given public key or password.
// If drop is set, the connection is closed before an exit status is sent.
func startServer(t *testing.T, authorized ssh.PublicKey, password string, exitStatus uint32, drop bool) *testServer {
	t.Helper()

	_, hostPriv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	hostSigner, err := ssh.NewSignerFromKey(hostPriv)
	require.NoError(t, err)

	ts := &testServer{cmds: make(chan string, 4), user: make(chan string, 4)}

	cfg := &ssh.ServerConfig{
		PublicKeyCallback: func(c ssh.ConnMetadata, k ssh.PublicKey) (*ssh.Permissions, error) {
			if authorized != nil && bytes.Equal(k.Marshal(), authorized.Marshal()) {
				ts.user <- c.User()
				return nil, nil
			}
			return nil, errors.New("denied")
		},
		PasswordCallback: func(c ssh.ConnMetadata, pw []byte) (*ssh.Permissions, error) {
			if password != "" && string(pw) == password {
				ts.user <- c.User()
				return nil, nil
			}
			return nil, errors.New("denied")
		},
	}
	cfg.AddHostKey(hostSigner)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = ln.Close() })
	ts.addr = ln.Addr().String()

	go func() {
		for {
			nc, err := ln.Accept()
			if err != nil {
				return
			}
			go serveConn(nc, cfg, ts.cmds, exitStatus, drop)
		}
	}()

	return ts
}

func serveConn(nc net.Conn, cfg *ssh.ServerConfig, cmds chan<- string, exitStatus uint32, drop bool) {
	sconn, chans, reqs, err := ssh.NewServerConn(nc, cfg)
	if err != nil {
		_ = nc.Close()
		return
	}
	defer sconn.Close()
	go ssh.DiscardRequests(reqs)

	for nch := range chans {
		if nch.ChannelType() != "session" {
			_ = nch.Reject(ssh.UnknownChannelType, "session only")
			continue
		}
		ch, creqs, err := nch.Accept()
		if err != nil {
			return
		}

		for req := range creqs {
			if req.Type != "exec" {
				_ = req.Reply(false, nil)
				continue
			}

			var p struct{ Command string }
			_ = ssh.Unmarshal(req.Payload, &p)
			_ = req.Reply(true, nil)
			cmds <- p.Command

			if drop {
				_ = ch.Close()
				return
			}

			_, _ = ch.Write([]byte("done\n"))
			_, _ = ch.SendRequest("exit-status", false, ssh.Marshal(struct{ Status uint32 }{exitStatus}))
			_ = ch.Close()
			break
		}
	}
}

func writeClientKey(t *testing.T) (string, ssh.PublicKey) {
	t.Helper()

	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)

	block, err := ssh.MarshalPrivateKey(priv, "")
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "ssh.key")
	require.NoError(t, os.WriteFile(path, pem.EncodeToMemory(block), 0o600))

	sshPub, err := ssh.NewPublicKey(pub)
	require.NoError(t, err)
	return path, sshPub
}

func TestShutdown_RunsCommandWithKey(t *testing.T) {
	keyPath, pub := writeClientKey(t)
	srv := startServer(t, pub, "", 0, false)

	c, err := New(Config{
		KeyPath:         keyPath,
		User:            "root",
		ShutdownCommand: "sudo poweroff",
		Timeout:         5 * time.Second,
	})
	require.NoError(t, err)

	require.NoError(t, c.Shutdown(context.Background(), "ops@"+srv.addr))
	assert.Equal(t, "ops", <-srv.user)
	assert.Equal(t, "sudo poweroff", <-srv.cmds)
}

func TestShutdown_DroppedConnectionCountsAsSuccess(t *testing.T) {
	keyPath, pub := writeClientKey(t)
	srv := startServer(t, pub, "", 0, true)

	c, err := New(Config{KeyPath: keyPath, User: "root", ShutdownCommand: "sudo poweroff", Timeout: 5 * time.Second})
	require.NoError(t, err)

	assert.NoError(t, c.Shutdown(context.Background(), srv.addr))
}

func TestShutdown_NonZeroExit(t *testing.T) {
	keyPath, pub := writeClientKey(t)
	srv := startServer(t, pub, "", 1, false)

	c, err := New(Config{KeyPath: keyPath, User: "root", ShutdownCommand: "sudo poweroff", Timeout: 5 * time.Second})
	require.NoError(t, err)

	err = c.Shutdown(context.Background(), srv.addr)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exited 1")
}

func TestShutdown_UnauthorizedKey(t *testing.T) {
	keyPath, _ := writeClientKey(t)
	_, other := writeClientKey(t)
	srv := startServer(t, other, "", 0, false)

	c, err := New(Config{KeyPath: keyPath, User: "root", ShutdownCommand: "sudo poweroff", Timeout: 5 * time.Second})
	require.NoError(t, err)

	assert.Error(t, c.Shutdown(context.Background(), srv.addr))
}

func TestPowerOn_PasswordAuth(t *testing.T) {
	srv := startServer(t, nil, "calvin", 0, false)

	c, err := New(Config{User: "root", PowerOnCommand: "racadm serveraction powerup", Timeout: 5 * time.Second})
	require.NoError(t, err)

	err = c.PowerOn(context.Background(), alert.PowerOnHost{
		Address:  srv.addr,
		Username: "idrac",
		Password: "calvin",
	})
	require.NoError(t, err)
	assert.Equal(t, "idrac", <-srv.user)
	assert.Equal(t, "racadm serveraction powerup", <-srv.cmds)
}

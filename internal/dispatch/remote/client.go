// internal/dispatch/remote/client.go
package remote

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"

	"github.com/tamzrod/solax-monitor/internal/alert"
)

const defaultPort = "22"

// maxOutput bounds how much remote output is echoed into an error.
const maxOutput = 512

type Config struct {
	KeyPath         string // private key for shutdown hosts; empty disables Shutdown
	User            string // default user when a host has no user@ prefix
	ShutdownCommand string
	PowerOnCommand  string
	KnownHosts      string // empty: host keys are not verified
	Timeout         time.Duration
}

// Client runs one remote command per call over a fresh SSH connection.
type Client struct {
	cfg     Config
	signer  ssh.Signer
	hostKey ssh.HostKeyCallback
}

func New(cfg Config) (*Client, error) {
	if cfg.User == "" {
		return nil, errors.New("remote: default user required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}

	c := &Client{cfg: cfg}

	if cfg.KeyPath != "" {
		pem, err := os.ReadFile(cfg.KeyPath)
		if err != nil {
			return nil, fmt.Errorf("remote: read key: %w", err)
		}
		signer, err := ssh.ParsePrivateKey(pem)
		if err != nil {
			return nil, fmt.Errorf("remote: parse key %s: %w", cfg.KeyPath, err)
		}
		c.signer = signer
	}

	if cfg.KnownHosts != "" {
		cb, err := knownhosts.New(cfg.KnownHosts)
		if err != nil {
			return nil, fmt.Errorf("remote: known_hosts: %w", err)
		}
		c.hostKey = cb
	} else {
		c.hostKey = ssh.InsecureIgnoreHostKey()
	}

	return c, nil
}

// Shutdown implements dispatch.Shutdowner.
func (c *Client) Shutdown(ctx context.Context, host string) error {
	if c.signer == nil {
		return errors.New("remote: no ssh key loaded")
	}
	if c.cfg.ShutdownCommand == "" {
		return errors.New("remote: no shutdown command")
	}

	user, addr, err := ParseTarget(host, c.cfg.User)
	if err != nil {
		return err
	}

	return c.run(ctx, addr, &ssh.ClientConfig{
		User:            user,
		Auth:            []ssh.AuthMethod{ssh.PublicKeys(c.signer)},
		HostKeyCallback: c.hostKey,
		Timeout:         c.cfg.Timeout,
	}, c.cfg.ShutdownCommand)
}

// PowerOn implements dispatch.PowerOner.
// Management controllers often only offer keyboard-interactive login,
// so the password is offered both ways.
func (c *Client) PowerOn(ctx context.Context, h alert.PowerOnHost) error {
	if c.cfg.PowerOnCommand == "" {
		return errors.New("remote: no power-on command")
	}

	_, addr, err := ParseTarget(h.Address, h.Username)
	if err != nil {
		return err
	}

	pw := h.Password
	answer := func(user, instruction string, questions []string, echos []bool) ([]string, error) {
		out := make([]string, len(questions))
		for i := range out {
			out[i] = pw
		}
		return out, nil
	}

	return c.run(ctx, addr, &ssh.ClientConfig{
		User: h.Username,
		Auth: []ssh.AuthMethod{
			ssh.Password(pw),
			ssh.KeyboardInteractive(answer),
		},
		HostKeyCallback: c.hostKey,
		Timeout:         c.cfg.Timeout,
	}, c.cfg.PowerOnCommand)
}

//
// ---- transport ----
//

func (c *Client) run(ctx context.Context, addr string, sc *ssh.ClientConfig, cmd string) error {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	d := net.Dialer{Timeout: c.cfg.Timeout}
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("remote: dial %s: %w", addr, err)
	}

	// Unblock the handshake and command if ctx ends first.
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	cc, chans, reqs, err := ssh.NewClientConn(conn, addr, sc)
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("remote: handshake %s: %w", addr, err)
	}
	client := ssh.NewClient(cc, chans, reqs)
	defer client.Close()

	sess, err := client.NewSession()
	if err != nil {
		return fmt.Errorf("remote: session %s: %w", addr, err)
	}
	defer sess.Close()

	out, err := sess.CombinedOutput(cmd)
	return commandResult(addr, out, err)
}

// commandResult maps a remote command outcome to an error.
// A host that drops the connection before reporting an exit status
// (as poweroff does) counts as success.
func commandResult(addr string, out []byte, err error) error {
	if err == nil {
		return nil
	}

	var missing *ssh.ExitMissingError
	if errors.As(err, &missing) {
		return nil
	}

	text := strings.TrimSpace(string(out))
	if len(text) > maxOutput {
		text = text[:maxOutput]
	}

	var exit *ssh.ExitError
	if errors.As(err, &exit) {
		return fmt.Errorf("remote: %s exited %d: %s", addr, exit.ExitStatus(), text)
	}
	return fmt.Errorf("remote: %s: %w", addr, err)
}

// ParseTarget splits "[user@]host[:port]" into a user and a dialable address.
// defUser is used when the target carries no user.
func ParseTarget(target, defUser string) (user, addr string, err error) {
	t := strings.TrimSpace(target)
	if t == "" {
		return "", "", errors.New("remote: empty host")
	}

	user = defUser
	if i := strings.LastIndex(t, "@"); i >= 0 {
		user, t = t[:i], t[i+1:]
		if user == "" {
			return "", "", fmt.Errorf("remote: empty user in %q", target)
		}
	}
	if user == "" {
		return "", "", fmt.Errorf("remote: no user for %q", target)
	}

	host, port, splitErr := net.SplitHostPort(t)
	if splitErr != nil {
		host, port = strings.Trim(t, "[]"), defaultPort
	}
	if host == "" {
		return "", "", fmt.Errorf("remote: empty host in %q", target)
	}

	return user, net.JoinHostPort(host, port), nil
}

// ABOUTME: Remote floor watcher orchestration
// ABOUTME: Finds a server via mDNS or flag, connects, and renders its frames in the TUI
package app

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"github.com/harperreed/dancefloor/internal/client"
	"github.com/harperreed/dancefloor/internal/config"
	"github.com/harperreed/dancefloor/internal/discovery"
	"github.com/harperreed/dancefloor/internal/ui"
)

const discoveryTimeout = 10 * time.Second

// Watcher shows a remote floor
type Watcher struct {
	config config.Config
	name   string
	client *client.Client
}

// NewWatcher creates a watcher
func NewWatcher(cfg config.Config) *Watcher {
	return &Watcher{
		config: cfg,
		name:   cfg.DisplayName("dancefloor-watch"),
	}
}

// Run connects and shows frames until ctx ends, the user quits or the server goes away
func (w *Watcher) Run(ctx context.Context) error {
	addr := w.config.Server
	if addr == "" {
		var err error
		if addr, err = discover(ctx, discoveryTimeout); err != nil {
			return err
		}
	}

	w.client = client.NewClient(client.Config{ServerAddr: addr, Name: w.name})
	if err := w.client.Connect(); err != nil {
		return fmt.Errorf("connection failed: %w", err)
	}
	defer w.client.Close()

	logrus.WithFields(logrus.Fields{
		"function": "Watcher.Run",
		"server":   addr,
		"name":     w.name,
	}).Info("Watching floor")

	if w.config.NoTUI {
		w.logFrames(ctx)
		return nil
	}
	return w.runTUI(ctx)
}

// discover browses mDNS for the first floor server
func discover(ctx context.Context, timeout time.Duration) (string, error) {
	logrus.Info("Starting server discovery")
	disc := discovery.NewManager(discovery.Config{})
	defer disc.Stop()
	if err := disc.Browse(); err != nil {
		return "", err
	}

	select {
	case server := <-disc.Servers():
		logrus.WithField("addr", server.Addr()).Info("Discovered server")
		return server.Addr(), nil
	case <-time.After(timeout):
		return "", fmt.Errorf("no server found after %s", timeout)
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (w *Watcher) runTUI(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sh := w.client.ServerHello()
	p := ui.NewProgram(ui.NewRemoteModel(ui.RemoteController{Client: w.client}, sh.Name))

	go w.feed(ctx, p)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI failed: %w", err)
	}
	return nil
}

// feed forwards client traffic into the program
func (w *Watcher) feed(ctx context.Context, p *tea.Program) {
	connected := true
	p.Send(ui.StatusMsg{Connected: &connected})

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.Quit()
			return
		case <-w.client.Done():
			connected = false
			p.Send(ui.StatusMsg{Connected: &connected, Dropped: w.client.Dropped()})
			return
		case f := <-w.client.Frames:
			p.Send(ui.FrameMsg(f))
		case meta := <-w.client.Metadata:
			p.Send(ui.MetadataMsg{Title: meta.Title, Artist: meta.Artist, Paused: meta.Paused})
		case <-ticker.C:
			p.Send(ui.StatusMsg{Connected: &connected, Dropped: w.client.Dropped()})
		}
	}
}

// logFrames reports what the server sends in place of the TUI
func (w *Watcher) logFrames(ctx context.Context) {
	ticker := time.NewTicker(statsInterval)
	defer ticker.Stop()

	frames := 0
	var last ui.FrameMsg
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.client.Done():
			logrus.Warn("Server connection closed")
			return
		case f := <-w.client.Frames:
			frames++
			last = ui.FrameMsg(f)
		case meta := <-w.client.Metadata:
			logrus.WithFields(logrus.Fields{
				"title":  meta.Title,
				"artist": meta.Artist,
				"paused": meta.Paused,
			}).Info("Now playing")
		case <-ticker.C:
			logrus.WithFields(logrus.Fields{
				"frames":    frames,
				"tick":      last.Tick,
				"dancers":   len(last.Dancers),
				"formation": last.Formation,
				"sync":      last.SyncMode,
				"dropped":   w.client.Dropped(),
			}).Info("Watcher stats")
		}
	}
}

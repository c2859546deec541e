package cli

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/searchd-io/searchd/pkg/types"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Drive a server-side search session",
	Long: `Creates a session on the gateway, streams its state over SSE and
forwards stdin lines as query input. Lines of the form ":page N" change
the page instead. The session is deleted on exit.`,
	RunE: runSession,
}

type sessionClient struct {
	base   string
	client *http.Client
}

func (sc *sessionClient) create(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, sc.base+"/api/v1/sessions", nil)
	if err != nil {
		return "", err
	}
	resp, err := sc.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("create session: unexpected status %d", resp.StatusCode)
	}
	var body struct {
		Data struct {
			SessionId string `json:"session_id"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", err
	}
	return body.Data.SessionId, nil
}

func (sc *sessionClient) sendInput(ctx context.Context, id string, input map[string]any) error {
	payload, err := json.Marshal(input)
	if err != nil {
		return err
	}
	url := fmt.Sprintf("%s/api/v1/sessions/%s/input", sc.base, id)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := sc.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("send input: unexpected status %d", resp.StatusCode)
	}
	return nil
}

func (sc *sessionClient) delete(id string) error {
	url := fmt.Sprintf("%s/api/v1/sessions/%s", sc.base, id)
	req, err := http.NewRequest(http.MethodDelete, url, nil)
	if err != nil {
		return err
	}
	resp, err := sc.client.Do(req)
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

// streamEvents reads the SSE stream and renders each state event until the
// context is cancelled or the stream ends.
func (sc *sessionClient) streamEvents(ctx context.Context, id string) error {
	url := fmt.Sprintf("%s/api/v1/sessions/%s/events", sc.base, id)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := sc.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("event stream: unexpected status %d", resp.StatusCode)
	}

	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data: ") {
			continue
		}

		var event struct {
			Documents []types.SearchDocument `json:"documents"`
			Total     int                    `json:"total"`
			Page      int                    `json:"page"`
			Loading   bool                   `json:"loading"`
			Error     string                 `json:"error,omitempty"`
		}
		if err := json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &event); err != nil {
			continue
		}

		switch {
		case event.Loading:
			fmt.Printf("  %s\n", DimStyle.Render("searching..."))
		case event.Error != "":
			PrintError(fmt.Errorf("%s", event.Error))
		default:
			PrintResults(&types.SearchResponse{
				Documents: event.Documents,
				Total:     event.Total,
				Page:      event.Page,
			})
		}
	}
	return scanner.Err()
}

func runSession(cmd *cobra.Command, args []string) error {
	sc := &sessionClient{
		base:   strings.TrimRight(gatewayHTTPAddr, "/"),
		client: &http.Client{},
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	createCtx, createCancel := context.WithTimeout(ctx, 10*time.Second)
	defer createCancel()

	id, err := sc.create(createCtx)
	if err != nil {
		return err
	}
	defer sc.delete(id)

	PrintSuccess(fmt.Sprintf("session %s created", id))
	PrintInfo("type to search, \":page N\" to paginate, Ctrl-D to exit")

	streamDone := make(chan error, 1)
	go func() {
		streamDone <- sc.streamEvents(ctx, id)
	}()

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := scanner.Text()

		if page, ok := strings.CutPrefix(line, ":page "); ok {
			var p int
			if _, err := fmt.Sscanf(page, "%d", &p); err != nil || p < 0 {
				PrintError(fmt.Errorf("invalid page %q", page))
				continue
			}
			if err := sc.sendInput(ctx, id, map[string]any{"page": p}); err != nil {
				return err
			}
			continue
		}

		if err := sc.sendInput(ctx, id, map[string]any{"q": line}); err != nil {
			return err
		}
	}

	cancel()
	<-streamDone
	return scanner.Err()
}

func init() {
	sessionCmd.SilenceUsage = true
}

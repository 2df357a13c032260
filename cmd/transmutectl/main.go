// Command transmutectl is a thin HTTP client for a running transmuted
// server: running transmutations, listing and registering edges, and
// minting API keys, from a terminal rather than curl.
package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"syscall"
	"time"

	"github.com/nyxwell/transmute/internal/httpapi"
	"golang.org/x/term"
)

const usage = `transmutectl - client for a transmute server

USAGE:
    transmutectl <command> [options]

COMMANDS:
    transmute     Run a transmutation
    edges         List registered edges
    register-edge Register a new edge against a known function
    create-key    Create an admin API key
    help          Show this help message

CONNECTION OPTIONS:
    -endpoint <url>   Server endpoint (default: http://localhost:8080, env TRANSMUTECTL_ENDPOINT)
    -api-key <key>    Bearer token; prompted without echo if omitted and the command needs one

EXAMPLES:
    transmutectl transmute -src str -dst json -value '"hello"'
    transmutectl edges
    transmutectl register-edge -name to_json -cost 1 -cat-in str -cat-out json -func-ref string_to_json
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}

	switch os.Args[1] {
	case "transmute":
		runTransmute(os.Args[2:])
	case "edges":
		runEdges(os.Args[2:])
	case "register-edge":
		runRegisterEdge(os.Args[2:])
	case "create-key":
		runCreateKey(os.Args[2:])
	case "help", "-h", "-help", "--help":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", os.Args[1])
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}
}

type client struct {
	endpoint string
	apiKey   string
	http     *http.Client
}

// connFlags holds the -endpoint/-api-key flag destinations shared by every
// subcommand. Register it on a FlagSet before calling Parse.
type connFlags struct {
	endpoint *string
	apiKey   *string
}

func addConnFlags(fs *flag.FlagSet) connFlags {
	return connFlags{
		endpoint: fs.String("endpoint", envOr("TRANSMUTECTL_ENDPOINT", "http://localhost:8080"), "server endpoint"),
		apiKey:   fs.String("api-key", os.Getenv("TRANSMUTECTL_API_KEY"), "bearer token"),
	}
}

func (cf connFlags) client(needsAuth bool) *client {
	key := *cf.apiKey
	if key == "" && needsAuth {
		key = promptPassword("API key: ")
	}

	return &client{
		endpoint: strings.TrimRight(*cf.endpoint, "/"),
		apiKey:   key,
		http:     &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *client) do(method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("transmutectl: encoding request: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, c.endpoint+path, reader)
	if err != nil {
		return fmt.Errorf("transmutectl: building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("transmutectl: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("transmutectl: reading response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return fmt.Errorf("transmutectl: %s %s: server returned %d: %s", method, path, resp.StatusCode, string(respBody))
	}
	if out == nil || len(respBody) == 0 {
		return nil
	}

	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(respBody, &envelope); err != nil {
		return fmt.Errorf("transmutectl: decoding response envelope: %w", err)
	}
	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return fmt.Errorf("transmutectl: decoding response: %w", err)
	}
	return nil
}

func runTransmute(args []string) {
	fs := flag.NewFlagSet("transmute", flag.ExitOnError)
	src := fs.String("src", "", "source category")
	dst := fs.String("dst", "", "destination category")
	value := fs.String("value", "null", "JSON-encoded input value")
	explicit := fs.Bool("explicit", false, "skip detector-based source tag inference")
	conn := addConnFlags(fs)
	fs.Parse(args)
	c := conn.client(false)

	var decoded any
	if err := json.Unmarshal([]byte(*value), &decoded); err != nil {
		fmt.Fprintf(os.Stderr, "invalid -value JSON: %v\n", err)
		os.Exit(1)
	}

	req := httpapi.TransmuteRequest{Value: decoded, SrcCat: *src, DstCat: *dst, Explicit: *explicit}
	var resp httpapi.TransmuteResponse
	if err := c.do(http.MethodPost, "/v1/transmute", req, &resp); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	out, _ := json.MarshalIndent(resp.Value, "", "  ")
	fmt.Println(string(out))
}

func runEdges(args []string) {
	fs := flag.NewFlagSet("edges", flag.ExitOnError)
	conn := addConnFlags(fs)
	fs.Parse(args)
	c := conn.client(false)

	var edges []httpapi.EdgeSummary
	if err := c.do(http.MethodGet, "/v1/edges", nil, &edges); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	for _, e := range edges {
		fmt.Printf("%-24s %s -> %s (cost=%g)\n", e.Name, e.CatIn, e.CatOut, e.Cost)
	}
}

func runRegisterEdge(args []string) {
	fs := flag.NewFlagSet("register-edge", flag.ExitOnError)
	name := fs.String("name", "", "edge name")
	cost := fs.Float64("cost", 1, "edge cost")
	catIn := fs.String("cat-in", "", "source category")
	catOut := fs.String("cat-out", "", "destination category")
	funcRef := fs.String("func-ref", "", "registered function name")
	reqIn := fs.String("req-in", "", "comma-separated required tags")
	provOut := fs.String("prov-out", "", "comma-separated provided tags")
	conn := addConnFlags(fs)
	fs.Parse(args)
	c := conn.client(true)

	req := httpapi.RegisterEdgeRequest{
		Name:    *name,
		Cost:    *cost,
		CatIn:   *catIn,
		CatOut:  *catOut,
		FuncRef: *funcRef,
		ReqIn:   splitCSV(*reqIn),
		ProvOut: splitCSV(*provOut),
	}
	var resp httpapi.EdgeSummary
	if err := c.do(http.MethodPost, "/v1/admin/edges", req, &resp); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Printf("registered %s: %s -> %s (cost=%g)\n", resp.Name, resp.CatIn, resp.CatOut, resp.Cost)
}

func runCreateKey(args []string) {
	fs := flag.NewFlagSet("create-key", flag.ExitOnError)
	name := fs.String("name", "", "key name")
	conn := addConnFlags(fs)
	fs.Parse(args)
	c := conn.client(true)

	req := httpapi.CreateAPIKeyRequest{Name: *name}
	var resp httpapi.CreateAPIKeyResponse
	if err := c.do(http.MethodPost, "/v1/admin/api-keys", req, &resp); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Printf("created key %q (prefix %s):\n%s\n", resp.Name, resp.KeyPrefix, resp.Key)
	fmt.Println("store this now, it will not be shown again")
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// promptPassword reads a bearer token from the terminal without echoing
// it, falling back to a plain line read when stdin is not a terminal.
func promptPassword(prompt string) string {
	fmt.Print(prompt)

	if term.IsTerminal(int(syscall.Stdin)) {
		token, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Println()
		if err == nil {
			return string(token)
		}
	}

	reader := bufio.NewReader(os.Stdin)
	line, _ := reader.ReadString('\n')
	return strings.TrimSpace(line)
}

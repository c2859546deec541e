package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/searchd-io/searchd/pkg/types"
)

// outputJSON controls whether commands should output JSON instead of styled text
var outputJSON bool

// SetJSONOutput sets the JSON output mode
func SetJSONOutput(enabled bool) {
	outputJSON = enabled
}

// PrintJSON outputs data as JSON if JSON mode is enabled, returns true if it did
func PrintJSON(data interface{}) bool {
	if !outputJSON {
		return false
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.Encode(data)
	return true
}

// PrintSuccess prints a success message with a green check
func PrintSuccess(msg string) {
	fmt.Printf("  %s %s\n", SuccessStyle.Render(SymbolSuccess), msg)
}

// PrintError prints an error message with a red X
func PrintError(err error) {
	fmt.Printf("  %s %s\n", ErrorStyle.Render(SymbolError), ErrorStyle.Render(err.Error()))
}

// PrintInfo prints an informational message
func PrintInfo(msg string) {
	fmt.Printf("  %s %s\n", InfoStyle.Render(SymbolInfo), msg)
}

// PrintResults renders a search response as a styled list
func PrintResults(resp *types.SearchResponse) {
	if PrintJSON(resp) {
		return
	}

	if resp.Total == 0 {
		fmt.Printf("  %s\n", DimStyle.Render("no results"))
		return
	}

	for _, doc := range resp.Documents {
		fmt.Printf("  %s %s %s\n",
			DimStyle.Render(SymbolBullet),
			TitleStyle.Render(doc.Title),
			DimStyle.Render(fmt.Sprintf("(%s)", doc.Id)),
		)
		if body := strings.TrimSpace(doc.Body); body != "" {
			fmt.Printf("    %s\n", DimStyle.Render(body))
		}
	}

	fmt.Printf("\n  %s\n", DimStyle.Render(fmt.Sprintf("%d results, page %d", resp.Total, resp.Page)))
}

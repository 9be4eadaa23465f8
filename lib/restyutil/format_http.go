package restyutil

import (
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"

	"github.com/go-resty/resty/v2"
)

// formatHttpMessage renders a request/response pair as a readable
// transcript, for debugging sessions against undocumented endpoints.
func formatHttpMessage(res *resty.Response) string {
	var out strings.Builder

	req := res.Request
	fmt.Fprintf(&out, ">>> %s %s\n", req.Method, req.URL)
	writeHeaders(&out, req.RawRequest.Header)
	if body := requestBody(req.RawRequest); body != "" {
		out.WriteString("\n")
		out.WriteString(body)
		out.WriteString("\n")
	}

	url := req.URL
	if redirected, err := res.RawResponse.Location(); err == nil {
		url = redirected.String()
	}
	fmt.Fprintf(&out, "\n<<< %d %s\n", res.StatusCode(), url)
	writeHeaders(&out, res.Header())
	out.WriteString("\n")
	out.WriteString(res.String())

	return out.String()
}

func writeHeaders(out *strings.Builder, headers http.Header) {
	names := make([]string, 0, len(headers))
	for name := range headers {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		for _, value := range headers[name] {
			fmt.Fprintf(out, "%s: %s\n", name, value)
		}
	}
}

func requestBody(req *http.Request) string {
	if req == nil || req.GetBody == nil {
		return ""
	}
	body, err := req.GetBody()
	if err != nil {
		return fmt.Sprintf("(unreadable body: %s)", err)
	}
	defer body.Close()
	data, err := io.ReadAll(body)
	if err != nil {
		return fmt.Sprintf("(unreadable body: %s)", err)
	}
	return string(data)
}

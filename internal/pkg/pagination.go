package pkg

import (
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/simp-lee/coachsync/internal/domain"
)

const (
	maxPageSize = 100
)

// viewParams are view-server query parameters that narrow a snapshot locally
// and are never forwarded to the remote API.
var viewParams = map[string]bool{
	"q":        true,
	"category": true,
	"status":   true,
}

// validParam matches remote filter names such as pageSize or empresaId.
var validParam = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_.]*$`)

// ParseFilter builds the remote list filter from the request query. The
// page and pageSize values are clamped to [1, 100]; out-of-range or malformed
// values are dropped so the hook defaults apply. View-only parameters and
// malformed names are ignored, except the view keys named in forward, which
// a server-authoritative domain filters remotely.
func ParseFilter(c *gin.Context, forward ...string) domain.Filter {
	filter := domain.Filter{}
	for key, values := range c.Request.URL.Query() {
		if (viewParams[key] && !slices.Contains(forward, key)) || !validParam.MatchString(key) {
			continue
		}
		if len(values) == 0 || values[0] == "" {
			continue
		}
		filter[key] = values[0]
	}

	for _, key := range []string{"page", "pageSize"} {
		v, ok := filter[key]
		if !ok {
			continue
		}
		n, err := strconv.Atoi(v)
		switch {
		case err != nil || n < 1:
			delete(filter, key)
		case key == "pageSize" && n > maxPageSize:
			filter[key] = strconv.Itoa(maxPageSize)
		default:
			filter[key] = strconv.Itoa(n)
		}
	}
	return filter
}

// ViewQuery is the local narrowing applied to a store snapshot.
type ViewQuery struct {
	Search   string
	Category string
	Status   string
}

// ParseViewQuery reads the view-only parameters.
func ParseViewQuery(c *gin.Context) ViewQuery {
	return ViewQuery{
		Search:   strings.TrimSpace(c.Query("q")),
		Category: strings.TrimSpace(c.Query("category")),
		Status:   strings.TrimSpace(c.Query("status")),
	}
}

// Without returns q with the named view keys (q, category, status) cleared.
func (q ViewQuery) Without(keys ...string) ViewQuery {
	for _, key := range keys {
		switch key {
		case "q":
			q.Search = ""
		case "category":
			q.Category = ""
		case "status":
			q.Status = ""
		}
	}
	return q
}

// Empty reports whether q keeps every item.
func (q ViewQuery) Empty() bool {
	return q.Search == "" && q.Category == "" && q.Status == ""
}

// Match reports whether an item with the given searchable text, category and
// status passes q. Search is a case-insensitive substring match over text;
// category and status compare case-insensitively.
func (q ViewQuery) Match(text []string, category, status string) bool {
	if q.Category != "" && !strings.EqualFold(q.Category, category) {
		return false
	}
	if q.Status != "" && !strings.EqualFold(q.Status, status) {
		return false
	}
	if q.Search == "" {
		return true
	}
	needle := strings.ToLower(q.Search)
	for _, t := range text {
		if strings.Contains(strings.ToLower(t), needle) {
			return true
		}
	}
	return false
}

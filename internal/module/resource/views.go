package resource

import (
	"strconv"

	"github.com/simp-lee/coachsync/internal/domain"
	"github.com/simp-lee/coachsync/internal/pkg"
)

func activeLabel(active bool) string {
	if active {
		return "active"
	}
	return "inactive"
}

func readLabel(read bool) string {
	if read {
		return "read"
	}
	return "unread"
}

// MatchClient searches name, email and phone; category is the goal.
func MatchClient(c domain.Client, q pkg.ViewQuery) bool {
	return q.Match([]string{c.Name, c.Email, c.Phone}, c.Goal, strconv.Itoa(c.Status))
}

// MatchUser uses the role as category and active/inactive as status.
func MatchUser(u domain.User, q pkg.ViewQuery) bool {
	return q.Match([]string{u.Name, u.Email}, u.Role, activeLabel(u.Active))
}

func MatchDiet(d domain.Diet, q pkg.ViewQuery) bool {
	return q.Match([]string{d.Name, d.Description}, "", strconv.Itoa(d.Status))
}

func MatchWorkout(w domain.Workout, q pkg.ViewQuery) bool {
	return q.Match([]string{w.Name, w.Description, w.Type}, w.Type, strconv.Itoa(w.Status))
}

func MatchCourse(c domain.Course, q pkg.ViewQuery) bool {
	return q.Match([]string{c.Title, c.Description, c.Instructor}, c.Category, strconv.Itoa(c.Status))
}

// MatchMessage uses read/unread as status.
func MatchMessage(m domain.Message, q pkg.ViewQuery) bool {
	return q.Match([]string{m.Content}, "", readLabel(m.Read))
}

func MatchNotification(n domain.Notification, q pkg.ViewQuery) bool {
	return q.Match([]string{n.Title, n.Message}, n.Type, readLabel(n.Read))
}

func MatchPlan(p domain.Plan, q pkg.ViewQuery) bool {
	return q.Match([]string{p.Name, p.Description}, "", activeLabel(p.Active))
}

func MatchFeedback(f domain.Feedback, q pkg.ViewQuery) bool {
	return q.Match([]string{f.Comment}, f.Category, f.Status)
}

func MatchReport(r domain.Report, q pkg.ViewQuery) bool {
	return q.Match([]string{r.Title, r.Type, r.Period}, r.Type, "")
}

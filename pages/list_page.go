// Package pages holds the view-models behind each screen: a list fetched from the backend,
// a loading flag and an inline error message.
package pages

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Padding(0, 1)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Padding(0, 1)

	placeholderStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("240")).
				Italic(true).
				Padding(0, 1)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Padding(0, 1)

	cellStyle = lipgloss.NewStyle().
			Padding(0, 1)
)

// Column renders one table column of a page.
type Column[T any] struct {
	Header string
	Value  func(T) string
}

// State is the serializable snapshot of a page.
type State[T any] struct {
	Title        string `json:"title"`
	Loading      bool   `json:"loading"`
	Items        []T    `json:"items"`
	ErrorMessage string `json:"errorMessage,omitempty"`
}

// ListPage fetches a list and keeps the outcome for display. Failures never escape Load;
// they end up in ErrorMessage. Loads are not cancelled, the last one to finish wins.
type ListPage[T any] struct {
	lock sync.Mutex

	title        string
	loading      bool
	items        []T
	errorMessage string

	fetch   func(ctx context.Context) ([]T, error)
	columns []Column[T]
}

func NewListPage[T any](title string, fetch func(ctx context.Context) ([]T, error), columns ...Column[T]) *ListPage[T] {
	return &ListPage[T]{title: title, items: []T{}, fetch: fetch, columns: columns}
}

func (p *ListPage[T]) Load(ctx context.Context) {
	p.lock.Lock()
	p.loading = true
	p.lock.Unlock()

	items, err := p.fetch(ctx)

	p.lock.Lock()
	defer p.lock.Unlock()
	p.loading = false
	if err != nil {
		p.errorMessage = err.Error()
		return
	}
	if items == nil {
		items = []T{}
	}
	p.items = items
	p.errorMessage = ""
}

// Mutate runs a write and refetches on success. A failed write is kept as the error message.
func (p *ListPage[T]) Mutate(ctx context.Context, mutation func(ctx context.Context) error) error {
	if err := mutation(ctx); err != nil {
		p.lock.Lock()
		p.errorMessage = err.Error()
		p.lock.Unlock()
		return err
	}
	p.Load(ctx)
	return nil
}

func (p *ListPage[T]) State() State[T] {
	p.lock.Lock()
	defer p.lock.Unlock()
	return State[T]{
		Title:        p.title,
		Loading:      p.loading,
		Items:        append([]T{}, p.items...),
		ErrorMessage: p.errorMessage,
	}
}

func (p *ListPage[T]) Items() []T {
	return p.State().Items
}

func (p *ListPage[T]) ErrorMessage() string {
	return p.State().ErrorMessage
}

func (p *ListPage[T]) Render(w io.Writer) error {
	_, err := io.WriteString(w, p.View()+"\n")
	return err
}

func (p *ListPage[T]) View() string {
	s := p.State()

	sections := []string{titleStyle.Render(s.Title)}
	if s.Loading {
		sections = append(sections, placeholderStyle.Render("Loading..."))
	}
	if s.ErrorMessage != "" {
		sections = append(sections, errorStyle.Render(s.ErrorMessage))
	}
	if len(s.Items) == 0 {
		if s.ErrorMessage == "" {
			sections = append(sections, placeholderStyle.Render("No records"))
		}
		return lipgloss.JoinVertical(lipgloss.Left, sections...)
	}

	headers := make([]string, 0, len(p.columns))
	for _, c := range p.columns {
		headers = append(headers, c.Header)
	}
	rows := make([][]string, 0, len(s.Items))
	for _, item := range s.Items {
		row := make([]string, 0, len(p.columns))
		for _, c := range p.columns {
			row = append(row, strings.TrimSpace(c.Value(item)))
		}
		rows = append(rows, row)
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	sections = append(sections, t.String())
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func formatID(id int64) string {
	return fmt.Sprintf("%d", id)
}

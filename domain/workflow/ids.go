package workflow

import (
	"fmt"
	"strings"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/sirupsen/logrus"
)

type IDGenerator interface {
	NewID(label string) string
}

// TimestampIDs builds "<label>-<unix millis>". Two drops within one millisecond collide.
type TimestampIDs struct {
	Now func() time.Time
}

func (g TimestampIDs) NewID(label string) string {
	now := time.Now
	if g.Now != nil {
		now = g.Now
	}
	return fmt.Sprintf("%s-%d", idLabel(label), now().UnixNano()/int64(time.Millisecond))
}

// NanoIDs builds "<label>-<nanoid>".
type NanoIDs struct {
	Size int
}

func (g NanoIDs) NewID(label string) string {
	size := g.Size
	if size <= 0 {
		size = 10
	}
	id, err := gonanoid.New(size)
	if err != nil {
		logrus.WithError(err).Warn("nanoid generation failed, using timestamp id")
		return TimestampIDs{}.NewID(label)
	}
	return idLabel(label) + "-" + id
}

func NewIDGenerator(strategy string) IDGenerator {
	if strategy == "nanoid" {
		return NanoIDs{}
	}
	return TimestampIDs{}
}

func idLabel(label string) string {
	return strings.ReplaceAll(strings.TrimSpace(label), " ", "_")
}

package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/wordbook/internal/events"
)

const sseKeepAlive = 25 * time.Second

// streamedEvents are the bus events that make an open page re-render.
var streamedEvents = map[string]bool{
	events.NotebooksChanged: true,
	events.WordsChanged:     true,
	events.SelectionChanged: true,
}

// EventsController pushes state changes to open pages.
type EventsController struct {
	bus *events.Bus
}

func NewEventsController(bus *events.Bus) *EventsController {
	return &EventsController{bus: bus}
}

// Stream is a server-sent event stream.
// GET /events
func (ec *EventsController) Stream(c *gin.Context) {
	ch, cancel := ec.bus.Subscribe(16)
	defer cancel()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)

	c.SSEvent("ready", gin.H{"at": time.Now().Unix()})
	c.Writer.Flush()

	ticker := time.NewTicker(sseKeepAlive)
	defer ticker.Stop()

	ctx := c.Request.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-ch:
			if !ok {
				return
			}
			if !streamedEvents[ev.Name] {
				continue
			}
			c.SSEvent(ev.Name, gin.H{"at": time.Now().Unix()})
			c.Writer.Flush()
		case <-ticker.C:
			c.SSEvent("ping", gin.H{"at": time.Now().Unix()})
			c.Writer.Flush()
		}
	}
}

package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	nethttp "net/http"
	"time"

	"github.com/iWorld-y/site_forge/app/site_forge/pkg/job"
)

const heartbeatInterval = 15 * time.Second

// streamEvents 以 server-sent events 推送任务快照和后续进度，订阅关闭时结束
//
// 不依赖请求的 ctx：服务端超时会提前取消它。客户端断开由写入失败发现。
func streamEvents(w nethttp.ResponseWriter, snapshot *job.Job, ch <-chan job.Progress, heartbeat time.Duration) error {
	rc := nethttp.NewResponseController(w)
	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	w.WriteHeader(nethttp.StatusOK)

	flush := func() error {
		if err := rc.Flush(); err != nil && !errors.Is(err, nethttp.ErrNotSupported) {
			return err
		}
		return nil
	}
	send := func(event string, v any) error {
		if err := writeEvent(w, event, v); err != nil {
			return err
		}
		return flush()
	}

	if err := send("job", snapshot); err != nil {
		return err
	}
	if ch == nil {
		return send("end", map[string]string{"status": string(snapshot.Status)})
	}

	ticker := time.NewTicker(heartbeat)
	defer ticker.Stop()

	for {
		select {
		case p, ok := <-ch:
			if !ok {
				return send("end", map[string]string{"status": "closed"})
			}
			if err := send("progress", p); err != nil {
				return err
			}
		case <-ticker.C:
			if _, err := io.WriteString(w, ": ping\n\n"); err != nil {
				return err
			}
			if err := flush(); err != nil {
				return err
			}
		}
	}
}

func writeEvent(w io.Writer, event string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode event failed: %w", err)
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data)
	return err
}

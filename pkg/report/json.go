package report

import (
	"encoding/json"
	"fmt"

	"github.com/blacktop/appguid/internal/utils"
	"github.com/blacktop/appguid/pkg/apps"
)

type jsonSink struct {
	opts Options
}

func (s *jsonSink) Render(rows []apps.Row) (fmt.Stringer, error) {
	if rows == nil {
		rows = []apps.Row{}
	}
	data, err := json.MarshalIndent(rows, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal json: %w", err)
	}
	out := s.opts.Filename("json")
	if err := utils.AtomicWrite(out, append(data, '\n')); err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", out, err)
	}
	return Path(out), nil
}

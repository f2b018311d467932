package footplan

import "github.com/pkg/errors"

// ErrNoFootsteps is returned by operations that need at least one
// footstep record (e.g. FormPreviewWindow before any AddFootstep call).
var ErrNoFootsteps = errors.New("footplan: plan has no footstep records")

// ErrNoSingleSupport is returned by GetNextSS/GetPrevSS when the search
// runs off either end of the plan without finding a single-support
// record of the requested side.
var ErrNoSingleSupport = errors.New("footplan: no matching single-support record")

// ErrNeedMoreFootsteps is PatternGenerator.FormPreviewWindow's WMG_HALT
// case: the plan ran out of footstep records before the preview window
// could be filled. The caller must AddFootstep and retry.
var ErrNeedMoreFootsteps = errors.New("footplan: plan does not extend far enough to fill the preview window")

package markup

import (
	"go.uber.org/zap"

	"xrc/anchor"
)

// Rewrite applies resolution results back to the chunk document: final ids on
// target elements, resolved hrefs on calls, markers on broken links and index
// occurrences. Safe to run concurrently for different chunks, a single chunk
// is rewritten exactly once.
func Rewrite(res *ScanResult, log *zap.Logger) {
	for _, tm := range res.Targets {
		SetAttr(tm.Elem, "id", tm.Target.ID)
	}

	for _, cm := range res.Calls {
		call := cm.Call
		if call.ID != "" {
			SetAttr(cm.Elem, "id", call.ID)
		}
		if call.Broken {
			AddClass(cm.Elem, ClassBrokenLink)
			log.Debug("Marked broken reference", zap.String("key", call.TargetKey), zap.String("file", call.File))
			continue
		}
		cm.Elem.RemoveAttr("data-target")
		SetAttr(cm.Elem, "href", call.ResolvedHref)
		if call.Target != nil && call.Target.Kind.IsNote() {
			AddClass(cm.Elem, ClassNoteLink)
		}
		if call.DisplayText == "" && call.Target != nil {
			if label := targetLabel(call.Target); label != "" {
				cm.Elem.SetText(label)
			}
		}
	}

	for _, im := range res.Index {
		AddClass(im.Elem, ClassIndexAnchor)
	}
}

// targetLabel picks display text for an empty call site: presentation number
// when the target has one, title otherwise.
func targetLabel(t *anchor.Target) string {
	if t.Number != "" {
		return t.Number
	}
	return t.Title
}

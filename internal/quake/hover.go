package quake

// PointerEvent is a pointer transition on a marker.
type PointerEvent string

const (
	PointerEnter PointerEvent = "enter"
	PointerLeave PointerEvent = "leave"
)

// HoverState is what a marker should look like after a pointer event.
type HoverState struct {
	MarkerID  string `json:"markerId" doc:"Marker the state applies to"`
	FillColor string `json:"fillColor" doc:"Fill colour (CSS)"`
	PopupOpen bool   `json:"popupOpen" doc:"Whether the popup is shown"`
}

// Hover resolves a pointer event against the given marker. The result only
// depends on its arguments, so interleaved events on different markers
// cannot leak into each other.
func Hover(m Marker, ev PointerEvent) HoverState {
	if ev == PointerEnter {
		return HoverState{MarkerID: m.ID, FillColor: HighlightColor, PopupOpen: true}
	}
	return HoverState{MarkerID: m.ID, FillColor: ColorFor(m.Magnitude), PopupOpen: false}
}

// MarkerHover holds both pointer outcomes of a marker so the page can apply
// them without computing styles itself.
type MarkerHover struct {
	Enter HoverState `json:"enter" doc:"State on pointer enter"`
	Leave HoverState `json:"leave" doc:"State on pointer leave"`
}

// HoverStates resolves enter and leave for m.
func HoverStates(m Marker) MarkerHover {
	return MarkerHover{Enter: Hover(m, PointerEnter), Leave: Hover(m, PointerLeave)}
}

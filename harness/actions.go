package harness

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/lendwise/landing/models"
)

// Action types.
const (
	ActionClick  = "click"
	ActionHover  = "hover"
	ActionDrag   = "drag"
	ActionWait   = "wait"
	ActionScroll = "scroll"
	ActionEval   = "eval"
	ActionUntil  = "until"
)

// dragSteps is the number of intermediate mouse moves in a drag, enough for
// pointermove-driven carousels to register motion.
const dragSteps = 20

// Action is one simulated user interaction.
type Action struct {
	Type     string
	Selector string

	// DX and DY are the drag offset in CSS pixels.
	DX, DY float64

	// Milliseconds is the wait duration when no selector is given.
	Milliseconds int

	// Amount is the number of viewports to scroll; negative scrolls up.
	Amount int

	// Code is the JS function for eval actions, or the predicate an until
	// action polls.
	Code string
}

// Click, Hover, Drag, WaitFor, Pause, Eval and WaitUntil build actions.
func Click(sel string) Action { return Action{Type: ActionClick, Selector: sel} }
func Hover(sel string) Action { return Action{Type: ActionHover, Selector: sel} }
func Drag(sel string, dx, dy float64) Action {
	return Action{Type: ActionDrag, Selector: sel, DX: dx, DY: dy}
}
func WaitFor(sel string) Action { return Action{Type: ActionWait, Selector: sel} }
func Pause(ms int) Action       { return Action{Type: ActionWait, Milliseconds: ms} }
func Eval(js string) Action     { return Action{Type: ActionEval, Code: js} }

// WaitUntil polls js until it returns true or the action times out. Prefer it
// to Pause when the page signals completion, e.g. finished animations.
func WaitUntil(js string) Action { return Action{Type: ActionUntil, Code: js} }

// executeActions runs the ordered list of actions on the page.
// If any action fails, it returns an error describing which action failed
// and how many completed successfully.
func executeActions(ctx context.Context, page *rod.Page, actions []Action, timeout time.Duration) error {
	for i, action := range actions {
		if err := executeSingleAction(ctx, page, action, timeout); err != nil {
			var ce *models.CheckError
			if errors.As(err, &ce) {
				ce.Message = fmt.Sprintf("action %d (%s) after %d completed: %s", i, action.Type, i, ce.Message)
				return ce
			}
			return models.NewCheckError(
				models.ErrCodeActionFailed,
				fmt.Sprintf("action %d (%s) failed after %d completed", i, action.Type, i),
				err,
			)
		}
	}
	return nil
}

// executeSingleAction dispatches a single action with its own timeout.
func executeSingleAction(ctx context.Context, page *rod.Page, action Action, timeout time.Duration) error {
	actionCtx, cancel := withOptionalTimeout(ctx, timeout)
	defer cancel()

	p := page.Context(actionCtx)

	switch action.Type {
	case ActionWait:
		return execWait(p, action)
	case ActionClick:
		return execClick(p, action)
	case ActionHover:
		return execHover(p, action)
	case ActionDrag:
		return execDrag(p, action)
	case ActionScroll:
		return execScroll(p, action)
	case ActionEval:
		return execEval(p, action)
	case ActionUntil:
		return execUntil(p, action)
	default:
		return fmt.Errorf("unknown action type: %s", action.Type)
	}
}

// withOptionalTimeout bounds ctx by d when d is positive.
func withOptionalTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d > 0 {
		return context.WithTimeout(ctx, d)
	}
	return context.WithCancel(ctx)
}

// findElement waits for sel until the action deadline; a miss is reported
// as ELEMENT_NOT_FOUND rather than a bare timeout.
func findElement(p *rod.Page, sel string) (*rod.Element, error) {
	el, err := p.Element(sel)
	if err != nil {
		return nil, models.NewCheckError(models.ErrCodeElementNotFound, fmt.Sprintf("%q not found", sel), err)
	}
	return el, nil
}

// execWait either sleeps for a duration or waits for a CSS selector to appear.
func execWait(p *rod.Page, action Action) error {
	if action.Selector != "" {
		_, err := findElement(p, action.Selector)
		return err
	}
	return sleepCtx(p, time.Duration(action.Milliseconds)*time.Millisecond)
}

func execClick(p *rod.Page, action Action) error {
	el, err := findElement(p, action.Selector)
	if err != nil {
		return err
	}
	return el.Click(proto.InputMouseButtonLeft, 1)
}

func execHover(p *rod.Page, action Action) error {
	el, err := findElement(p, action.Selector)
	if err != nil {
		return err
	}
	return el.Hover()
}

// execDrag presses the mouse at the element's center, moves it linearly by
// (DX, DY) and releases.
func execDrag(p *rod.Page, action Action) error {
	el, err := findElement(p, action.Selector)
	if err != nil {
		return err
	}
	if err := el.ScrollIntoView(); err != nil {
		return fmt.Errorf("scroll into view: %w", err)
	}
	shape, err := el.Shape()
	if err != nil {
		return fmt.Errorf("element shape: %w", err)
	}
	start := shape.OnePointInside()
	if start == nil {
		return fmt.Errorf("element %q has no visible area", action.Selector)
	}

	if err := p.Mouse.MoveTo(*start); err != nil {
		return err
	}
	if err := p.Mouse.Down(proto.InputMouseButtonLeft, 1); err != nil {
		return err
	}
	end := proto.Point{X: start.X + action.DX, Y: start.Y + action.DY}
	if err := p.Mouse.MoveLinear(end, dragSteps); err != nil {
		_ = p.Mouse.Up(proto.InputMouseButtonLeft, 1)
		return err
	}
	return p.Mouse.Up(proto.InputMouseButtonLeft, 1)
}

// execScroll scrolls the page by the specified number of viewports.
func execScroll(p *rod.Page, action Action) error {
	amount := action.Amount
	if amount == 0 {
		amount = 1
	}

	res, err := p.Eval(`() => window.innerHeight`)
	if err != nil {
		return fmt.Errorf("failed to get viewport height: %w", err)
	}
	delta := float64(res.Value.Int())
	if amount < 0 {
		delta, amount = -delta, -amount
	}

	for i := 0; i < amount; i++ {
		if err := p.Mouse.Scroll(0, delta, 0); err != nil {
			return fmt.Errorf("scroll step %d failed: %w", i, err)
		}
	}
	return nil
}

func execEval(p *rod.Page, action Action) error {
	if action.Code == "" {
		return fmt.Errorf("eval action requires code")
	}
	if _, err := p.Eval(action.Code); err != nil {
		return classifyEvalError(err)
	}
	return nil
}

func execUntil(p *rod.Page, action Action) error {
	err := p.Wait(rod.Eval(action.Code))
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return models.NewCheckError(models.ErrCodeActionFailed, "condition still false at timeout", err)
	}
	return classifyEvalError(err)
}

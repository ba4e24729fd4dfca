//go:build js && wasm

// FilmBorders WASM — client-side renderer.
// Compiled with: GOOS=js GOARCH=wasm go build -o filmborders.wasm ./clients/wasm/
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"syscall/js"

	"github.com/xob0t/FilmBorders/pkg/border"
	"github.com/xob0t/FilmBorders/pkg/img"
	"github.com/xob0t/FilmBorders/pkg/options"
	"github.com/xob0t/FilmBorders/pkg/render"
	"github.com/xob0t/FilmBorders/pkg/worker"
)

// In-memory border store, keyed by caller-chosen IDs.
var (
	bordersMu sync.RWMutex
	borders   = make(map[string]*img.Image)
)

// Latest-wins scheduler behind goSubmit; results go to the goOnResult callback.
var (
	sched      = worker.New()
	callbackMu sync.Mutex
	callback   js.Value
)

func main() {
	fmt.Println("FilmBorders WASM loaded")

	js.Global().Set("goRender", js.FuncOf(renderImage))
	js.Global().Set("goSubmit", js.FuncOf(submit))
	js.Global().Set("goOnResult", js.FuncOf(onResult))
	js.Global().Set("goRegisterBorder", js.FuncOf(registerBorder))
	js.Global().Set("goRemoveBorder", js.FuncOf(removeBorder))
	js.Global().Set("goBuiltins", js.FuncOf(builtins))
	js.Global().Set("goReady", js.ValueOf(true))

	for resp := range sched.Responses() {
		callbackMu.Lock()
		cb := callback
		callbackMu.Unlock()
		if cb.Type() == js.TypeFunction {
			cb.Invoke(reply(resp.ID, resp.Result, resp.Err))
		}
	}
}

// pixels copies a Uint8ClampedArray of RGBA8 data into an image.
func pixels(v js.Value, w, h int) (*img.Image, error) {
	if v.IsNull() || v.IsUndefined() {
		return nil, nil
	}
	if v.Type() != js.TypeObject ||
		!(v.InstanceOf(js.Global().Get("Uint8ClampedArray")) || v.InstanceOf(js.Global().Get("Uint8Array"))) {
		return nil, fmt.Errorf("pixels must be a Uint8ClampedArray, got %s", v.Type())
	}
	buf := make([]byte, v.Get("length").Int())
	js.CopyBytesToGo(buf, v)
	return img.FromRGBA8(w, h, buf)
}

// intArg reads a numeric argument; null and undefined read as 0.
func intArg(v js.Value, name string) (int, error) {
	switch v.Type() {
	case js.TypeNumber:
		return v.Int(), nil
	case js.TypeNull, js.TypeUndefined:
		return 0, nil
	}
	return 0, fmt.Errorf("%s must be a number, got %s", name, v.Type())
}

// borderFrom interprets the border argument: RGBA pixels (with bw, bh), a
// registered border ID, or null with an optional builtin name.
func borderFrom(v js.Value, bw, bh int, builtin string) (border.Source, error) {
	switch {
	case v.Type() == js.TypeString:
		bordersMu.RLock()
		m, ok := borders[v.String()]
		bordersMu.RUnlock()
		if !ok {
			return border.None(), fmt.Errorf("no registered border %q", v.String())
		}
		return border.Custom(m), nil
	case !v.IsNull() && !v.IsUndefined():
		m, err := pixels(v, bw, bh)
		if err != nil {
			return border.None(), fmt.Errorf("border: %w", err)
		}
		return border.Custom(m), nil
	case builtin != "":
		n, err := border.ParseName(builtin)
		if err != nil {
			return border.None(), err
		}
		return border.Builtin(n), nil
	}
	return border.None(), nil
}

// request decodes the shared argument list of goRender and goSubmit:
// (optionsJSON, src, w, h, border|id|null, bw, bh, builtinName, requestId).
func request(args []js.Value) (worker.Request, error) {
	if len(args) < 9 {
		return worker.Request{}, errors.New("need optionsJSON, src, w, h, border, bw, bh, builtinName, requestId")
	}
	var req worker.Request
	if args[8].Type() != js.TypeNumber {
		return req, fmt.Errorf("requestId must be a number, got %s", args[8].Type())
	}
	req.ID = uint64(args[8].Int())
	if args[0].Type() != js.TypeString {
		return req, fmt.Errorf("optionsJSON must be a string, got %s", args[0].Type())
	}
	req.OptionsText = args[0].String()

	var dims [4]int
	for i, n := range []int{2, 3, 5, 6} {
		d, err := intArg(args[n], fmt.Sprintf("argument %d", n))
		if err != nil {
			return req, err
		}
		dims[i] = d
	}
	src, err := pixels(args[1], dims[0], dims[1])
	if err != nil {
		return req, fmt.Errorf("source: %w", err)
	}
	if src == nil {
		return req, errors.New("source: no pixels")
	}
	req.Source = src
	builtin := ""
	if args[7].Type() == js.TypeString {
		builtin = args[7].String()
	}
	if req.Border, err = borderFrom(args[4], dims[2], dims[3], builtin); err != nil {
		return req, err
	}
	return req, nil
}

// reply builds {requestId, width, height, result} or {requestId, error}.
func reply(id uint64, m *img.Image, err error) js.Value {
	out := map[string]any{"requestId": id}
	switch {
	case errors.Is(err, worker.ErrSuperseded):
		out["superseded"] = true
		out["error"] = err.Error()
	case err != nil:
		out["error"] = err.Error()
	default:
		data := js.Global().Get("Uint8ClampedArray").New(len(m.Data()))
		js.CopyBytesToJS(data, m.Data())
		out["width"] = m.Width()
		out["height"] = m.Height()
		out["result"] = data
	}
	return js.ValueOf(out)
}

// goRender(optionsJSON, src, w, h, border|id|null, bw, bh, builtinName, requestId)
// renders synchronously.
func renderImage(this js.Value, args []js.Value) any {
	req, err := request(args)
	if err != nil {
		return reply(req.ID, nil, err)
	}
	o, err := options.Deserialize(req.OptionsText)
	if err != nil {
		return reply(req.ID, nil, err)
	}
	out, err := render.Render(req.Source, req.Border, o)
	return reply(req.ID, out, err)
}

// goSubmit(...same arguments as goRender) queues a render. A request still
// waiting when a newer one arrives is answered with superseded: true.
func submit(this js.Value, args []js.Value) any {
	req, err := request(args)
	if err != nil {
		return reply(req.ID, nil, err)
	}
	if err := sched.Submit(req); err != nil {
		return reply(req.ID, nil, err)
	}
	return js.Null()
}

// goOnResult(fn) sets the callback for goSubmit results.
func onResult(this js.Value, args []js.Value) any {
	if len(args) < 1 || args[0].Type() != js.TypeFunction {
		return js.ValueOf("error: need a function")
	}
	callbackMu.Lock()
	callback = args[0]
	callbackMu.Unlock()
	return js.ValueOf("ok")
}

// goRegisterBorder(id, pixels, w, h) stores a border for later requests.
func registerBorder(this js.Value, args []js.Value) any {
	if len(args) < 4 {
		return js.ValueOf("error: need id, pixels, w, h")
	}
	w, err := intArg(args[2], "w")
	if err != nil {
		return js.ValueOf("error: " + err.Error())
	}
	h, err := intArg(args[3], "h")
	if err != nil {
		return js.ValueOf("error: " + err.Error())
	}
	m, err := pixels(args[1], w, h)
	if err != nil {
		return js.ValueOf("error: " + err.Error())
	}
	if m.IsEmpty() {
		return js.ValueOf("error: empty border")
	}
	bordersMu.Lock()
	borders[args[0].String()] = m
	bordersMu.Unlock()

	out := map[string]any{"width": m.Width(), "height": m.Height()}
	if win, ok := border.Window(m, border.DefaultAnalysis()); ok {
		out["window"] = map[string]any{"top": win.Top, "left": win.Left, "bottom": win.Bottom, "right": win.Right}
	}
	return js.ValueOf(out)
}

// goRemoveBorder(id) drops a registered border.
func removeBorder(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return js.ValueOf("error: need id")
	}
	bordersMu.Lock()
	delete(borders, args[0].String())
	bordersMu.Unlock()
	return js.ValueOf("ok")
}

// goBuiltins() returns the builtin catalogue as JSON.
func builtins(this js.Value, args []js.Value) any {
	list, err := border.Catalog()
	if err != nil {
		return js.ValueOf("error: " + err.Error())
	}
	data, err := json.Marshal(list)
	if err != nil {
		return js.ValueOf("error: " + err.Error())
	}
	return js.ValueOf(string(data))
}

package mux

import (
	"net/http"
)

// HandlerFunc handles a request. In a linear chain a handler either returns
// a final response or Next to continue.
type HandlerFunc func(*Request) (Response, error)

// NextFunc runs the rest of the chain.
type NextFunc func() (Response, error)

// WrapperFunc is an onion middleware. It may act before and after calling
// next, replace its result, or not call it at all.
type WrapperFunc func(req *Request, next NextFunc) (Response, error)

// call runs h and turns a panic into a *PanicError.
func call(h HandlerFunc, req *Request) (resp Response, err error) {
	defer func() {
		if v := recover(); v != nil {
			if v == http.ErrAbortHandler {
				panic(v)
			}
			err = newPanicError(v)
		}
	}()
	return h(req)
}

// applyWrappers nests h in wrappers, the first wrapper outermost. The next
// function given to each wrapper recovers panics itself, so a wrapper may
// call it from another goroutine.
func applyWrappers(h HandlerFunc, wrappers []WrapperFunc) HandlerFunc {
	for i := len(wrappers) - 1; i >= 0; i-- {
		w, inner := wrappers[i], h
		h = func(req *Request) (Response, error) {
			return w(req, func() (Response, error) {
				return call(inner, req)
			})
		}
	}
	return h
}

// chain runs handlers in order until one returns a final response. Passed
// data is merged into ContextData before the next handler runs. When every
// handler continues the chain fails with ErrNoResponse.
func chain(handlers ...HandlerFunc) HandlerFunc {
	return func(req *Request) (Response, error) {
		for _, h := range handlers {
			resp, err := call(h, req)
			if err != nil {
				return resp, err
			}
			if !resp.Next {
				return resp, nil
			}
			req.merge(resp.PassedData)
		}
		return Response{}, ErrNoResponse
	}
}

func concat[T any](parts ...[]T) []T {
	var n int
	for _, p := range parts {
		n += len(p)
	}
	out := make([]T, 0, n)
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

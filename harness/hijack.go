package harness

import (
	"fmt"
	"log/slog"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/ysmood/gson"
)

// configToProto maps human-readable resource type names to Rod protocol types.
var configToProto = map[string]proto.NetworkResourceType{
	"Image":      proto.NetworkResourceTypeImage,
	"Stylesheet": proto.NetworkResourceTypeStylesheet,
	"Font":       proto.NetworkResourceTypeFont,
	"Media":      proto.NetworkResourceTypeMedia,
	"Script":     proto.NetworkResourceTypeScript,
	"XHR":        proto.NetworkResourceTypeXHR,
	"Fetch":      proto.NetworkResourceTypeFetch,
}

// validResourceType reports whether name can be blocked.
func validResourceType(name string) bool {
	_, ok := configToProto[name]
	return ok
}

// setupHijack installs a request interceptor that fails the given resource
// types. Returns nil when there is nothing to block; otherwise the caller
// must Stop the router.
func setupHijack(page *rod.Page, blockedTypes []string) *rod.HijackRouter {
	blocked := make(map[proto.NetworkResourceType]struct{}, len(blockedTypes))
	for _, name := range blockedTypes {
		if rt, ok := configToProto[name]; ok {
			blocked[rt] = struct{}{}
		}
	}
	if len(blocked) == 0 {
		return nil
	}

	router := page.HijackRequests()
	_ = router.Add("*", "", func(ctx *rod.Hijack) {
		if _, shouldBlock := blocked[ctx.Request.Type()]; shouldBlock {
			ctx.Response.Fail(proto.NetworkErrorReasonBlockedByClient)
			return
		}
		ctx.ContinueRequest(&proto.FetchContinueRequest{})
	})

	// router.Run() blocks until Stop.
	go router.Run()

	return router
}

// disableCache bypasses the browser cache and asks every intermediary for a
// fresh copy, so a check never measures stale CSS.
func disableCache(page *rod.Page) error {
	// Both commands only take effect while the Network domain is enabled; it
	// stays enabled until the page closes.
	_ = page.EnableDomain(&proto.NetworkEnable{})

	if err := (proto.NetworkSetCacheDisabled{CacheDisabled: true}).Call(page); err != nil {
		return fmt.Errorf("disable cache: %w", err)
	}
	err := proto.NetworkSetExtraHTTPHeaders{
		Headers: proto.NetworkHeaders{
			"Cache-Control": gson.New("no-cache"),
			"Pragma":        gson.New("no-cache"),
		},
	}.Call(page)
	if err != nil {
		slog.Debug("extra no-cache headers not applied", "error", err)
	}
	return nil
}

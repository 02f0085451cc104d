// Package prismicclient is the entry point for bootstrapping a content
// repository API that implements the prismic.API interface.
//
// It fetches the repository root document through a shared TTL cache,
// classifies authorization failures, decodes the document and binds its
// forms to a transport. Most applications import prismicclient to build an
// API, then use the returned prismic.API to read refs, bookmarks and forms.
//
// Quick start
//
//	import (
//	  "context"
//	  "log"
//
//	  "github.com/fivetwenty-io/prismic-go/pkg/prismic"
//	  "github.com/fivetwenty-io/prismic-go/pkg/prismicclient"
//	)
//
//	func example() {
//	  ctx := context.Background()
//
//	  // Public repository.
//	  api, err := prismicclient.Get(ctx, "https://repo.cdn.prismic.io/api", "")
//	  if err != nil { log.Fatal(err) }
//	  defer api.Close()
//
//	  master, err := api.Master()
//	  if err != nil { log.Fatal(err) }
//
//	  form, err := api.Form("everything")
//	  if err != nil { log.Fatal(err) }
//
//	  docs, err := form.Ref(master.Ref).Query(prismic.At("document.type", "article")).Submit(ctx)
//	  if err != nil { log.Fatal(err) }
//	  _ = docs
//	}
//
// # Authorization
//
// Private repositories need an access token. Without one, or with an expired
// one, New returns a *prismic.Error; use prismic.IsAuthorizationNeeded,
// prismic.IsInvalidToken and prismic.ContinuationURL to send the user to the
// OAuth flow.
//
// # Caching
//
// Root documents stay cached for five seconds, keyed by request URL and
// token. Every API built without Config.Cache shares DefaultCache. A
// JetStream KV bucket can back the cache across processes; see
// prismic.CacheConfig.
//
// # Helpers
//
// The package also provides convenience constructors Get, NewWithToken and
// NewWithProxy that wrap New with the appropriate configuration.
package prismicclient

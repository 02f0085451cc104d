// Package prismic provides types, interfaces, and helpers for working with a
// content repository API.
//
// # Overview
//
// The prismic package defines the root document model (Ref, Form, Field,
// Experiments, APIData), search results (Document, SearchResponse) and the
// API and SearchForm interfaces. A concrete implementation is provided by the
// prismicclient package, which wires configuration, transport, caching and
// error classification. Most consumers should import prismicclient to build
// an API and then use the interfaces exposed here.
//
// Getting an API
//
//	api, err := prismicclient.New(ctx, &prismic.Config{
//	  Endpoint:    "https://repo.cdn.prismic.io/api",
//	  AccessToken: os.Getenv("PRISMIC_TOKEN"),
//	})
//	if err != nil { log.Fatal(err) }
//
// # Queries
//
// Forms are bound to the API they come from. Setters return a modified copy,
// so the same form can seed many queries:
//
//	form, _ := api.Form("everything")
//	resp, err := form.
//	  Ref(master.Ref).
//	  Query(prismic.Any("document.tags", "news", "blog")).
//	  PageSize(20).
//	  Submit(ctx)
//
// # Previews
//
// API.PreviewSession turns a preview token into the URL of the previewed
// document through a LinkResolver. It falls back to a default URL on any
// failure.
//
// # Errors
//
// Root document failures are represented by Error, tagged with an ErrorKind.
// Helpers such as IsAuthorizationNeeded, IsInvalidToken and ContinuationURL
// make it easy to branch on authorization cases. Malformed documents yield a
// ParseError.
//
// # Caching
//
// Cache is the contract of the root document cache. TTLCache implements it
// over a pluggable Store: an LRU MemoryStore, a JetStream KV NATSKVStore, a
// StoreChain of both, or NoOpStore. CacheConfig and CacheBuilder assemble
// them.
package prismic

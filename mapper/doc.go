// Package mapper turns a declarative API manifest into a callable client and
// every call into a fully resolved, immutable Request.
//
// The package does no I/O. Requests are handed to a gateway supplied by the
// caller, such as the one in the http package of this module.
//
// Basic Usage:
//
//	manifest := mapper.NewManifest("https://api.example.com").
//	    Add("User", "all", mapper.MethodConfig{Path: "/users"}).
//	    Add("User", "byId", mapper.MethodConfig{Path: "/users/{id}"})
//
//	builder, err := mapper.NewClientBuilder(manifest, gateway.Factory())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	client, err := builder.Build()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	resp, err := client.Call(ctx, "User", "byId", mapper.Args{
//	    Params: mapper.NewParams(mapper.P("id", 1)),
//	})
//
// Requests:
//
// A Request combines a MethodDescriptor with call-time Args. Params are
// insertion ordered; placeholders such as {id} are filled from them and the
// rest become the query string in the same order:
//
//	d := mapper.NewMethodDescriptor(mapper.MethodConfig{Path: "/api/example/{id}.json"})
//	r := mapper.NewRequest(d, mapper.Args{
//	    Params: mapper.NewParams(mapper.P("id", 1), mapper.P("title", "test")),
//	})
//	path, _ := r.Path() // "/api/example/1.json?title=test"
//
// Thread Safety:
//
// Descriptors and Requests are immutable and a built Client holds no mutable
// state, so methods may be called from many goroutines at once.
package mapper

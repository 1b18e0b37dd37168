// Package config loads mapsmith manifests from YAML or JSON files.
//
// A manifest describes a remote API as resources and methods:
//
//	host: https://api.example.com
//	resources:
//	  User:
//	    all:   { path: /users }
//	    byId:  { path: "/users/{id}" }
//	    create:
//	      path: /users
//	      method: post
//	      headers: { X-Api-Key: "{{apiKey}}" }
//
// Basic Usage:
//
//	manifest, err := config.LoadManifest("api.yaml", map[string]string{"apiKey": "secret"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	builder, err := mapper.NewClientBuilder(manifest, gateway.Factory())
//
// Variable Substitution:
//
// Values may reference variables with the {{variableName}} syntax. They are
// replaced before validation; a reference with no matching variable is a
// load error. Resource and method names are never substituted.
//
// Validation:
//
// Loading checks the document shape against an embedded JSON Schema and then
// checks each method with ValidateManifest: the verb must be a known HTTP
// verb, hosts must be URLs, and bodyAttr and headersAttr must differ. A
// method without a path is accepted here and rejected by the ClientBuilder.
package config

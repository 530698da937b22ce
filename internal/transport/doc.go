// Package transport implements git's smart-HTTP transport: ref
// discovery over GET info/refs and pack negotiation over POST
// git-upload-pack, both pkt-line framed per
// https://git-scm.com/docs/http-protocol.
//
// Example usage:
//
//	transport := transport.NewHTTPTransport("https://example.com/user/repo")
//
//	ctx := context.Background()
//	discovery, err := transport.DiscoverRefs(ctx, "git-upload-pack")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	packReader, err := transport.FetchPack(ctx, []string{discovery.Refs["HEAD"]}, nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer packReader.Close()
//
// The transport layer handles the low-level protocol details so that
// higher-level operations like clone can work purely in terms of refs
// and packfile bytes.
package transport

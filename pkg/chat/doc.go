// Package chat registers users with a Stream-compatible chat service and
// mints the tokens clients use to connect to it.
//
// The server authenticates to the REST API with an HS256 JWT carrying
// {"server": true}; end users receive a token carrying their user_id, signed
// with the same secret.
//
//	client, err := chat.New(cfg, chat.WithLogger(log))
//	err = client.UpsertUser(ctx, chat.User{ID: id, Username: "alice-1a2b", Name: "alice-1a2b"})
//	token, err := client.UserToken(id)
package chat

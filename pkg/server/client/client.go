// Package client embeds the browser program that renders view records and
// sends interaction events back over the websocket.
package client

import _ "embed"

// Script is the client program, inlined into the served page.
//
//go:embed client.js
var Script string

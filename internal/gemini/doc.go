// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package gemini provides the streaming HTTP client for the Gemini generative
API.

The client converts chat history into the generate request layout (system
instruction plus role-attributed content turns, inline media before text),
posts it to streamGenerateContent with SSE framing, and surfaces the reply
as ordered text fragments through a callback.

# Key Types

  - Client: the HTTP client, constructed from a ClientConfig.
  - GenerateRequest / GenerateChunk: the wire request and streamed response.
  - ClientError: categorized failure (connection, auth, rate limit, API,
    stream, canceled).
  - StreamReader: SSE line parser turning data events into fragments.

# Usage

	client := gemini.NewClient(gemini.ClientConfig{APIKey: key})
	err := client.StreamReply(ctx, history, func(fragment string) {
		fmt.Print(fragment)
	})

StreamReply guarantees at least one fragment: if the call fails before any
text arrives, a fixed fallback sentence is emitted so the turn can settle
around visible content, and the error is still returned for notification.
*/
package gemini

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package chat reconciles streaming backend replies into the session store.

The Driver runs one turn at a time: it snapshots the active session and its
history, commits the user message, streams the reply, and writes every
fragment back against the snapshot session id. Pinning writes to the
snapshot makes mid-stream session switches safe: fragments keep landing in
the session that started the turn, and a deleted session degrades to store
no-ops.

# Key Types

  - Driver: the turn state machine (idle, sent, thinking, streaming,
    settled, errored).
  - Event: lifecycle notifications for the UI (TurnStartedEvent,
    ThinkingEvent, ReplyBeganEvent, FragmentEvent, TurnSettledEvent,
    TurnFailedEvent).
  - Generator: the backend interface, satisfied by gemini.Client.

# Usage

	d := chat.NewDriver(st, client, func(ev chat.Event) {
		program.Send(toMsg(ev))
	})
	err := d.Send(ctx, text, attachments)

A failed turn still settles: the reply holds at least the fallback
sentence, is finalized, and TurnFailedEvent carries the error for the
notification toast.
*/
package chat

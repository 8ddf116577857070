package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/VTGare/magpie/ctxzap"
	"github.com/VTGare/magpie/store"
	"github.com/diamondburned/arikawa/v3/discord"
)

// snipeRow is the flattened form of store.Snipe as it is persisted. Reply
// columns were added in a later migration and are nullable.
type snipeRow struct {
	ChannelID      int64          `db:"channel_id"`
	MessageID      int64          `db:"message_id"`
	AuthorID       int64          `db:"author_id"`
	AuthorName     string         `db:"author_name"`
	Content        sql.NullString `db:"content"`
	SentAt         int64          `db:"sent_at"`
	Attachments    string         `db:"attachments"`
	ReplyAuthor    sql.NullString `db:"reply_author"`
	ReplyContent   sql.NullString `db:"reply_content"`
	ReplyChannelID sql.NullInt64  `db:"reply_channel_id"`
	ReplyMessageID sql.NullInt64  `db:"reply_message_id"`
}

type editRow struct {
	ChannelID      int64          `db:"channel_id"`
	MessageID      int64          `db:"message_id"`
	AuthorID       int64          `db:"author_id"`
	AuthorName     string         `db:"author_name"`
	BeforeContent  sql.NullString `db:"before_content"`
	AfterContent   sql.NullString `db:"after_content"`
	SentAt         int64          `db:"sent_at"`
	EditedAt       int64          `db:"edited_at"`
	ReplyAuthor    sql.NullString `db:"reply_author"`
	ReplyContent   sql.NullString `db:"reply_content"`
	ReplyChannelID sql.NullInt64  `db:"reply_channel_id"`
	ReplyMessageID sql.NullInt64  `db:"reply_message_id"`
}

const upsertSnipeQuery = `
INSERT INTO snipes (
	channel_id, message_id, author_id, author_name, content, sent_at,
	attachments, reply_author, reply_content, reply_channel_id, reply_message_id
) VALUES (
	:channel_id, :message_id, :author_id, :author_name, :content, :sent_at,
	:attachments, :reply_author, :reply_content, :reply_channel_id, :reply_message_id
)
ON CONFLICT (channel_id) DO UPDATE SET
	message_id = excluded.message_id,
	author_id = excluded.author_id,
	author_name = excluded.author_name,
	content = excluded.content,
	sent_at = excluded.sent_at,
	attachments = excluded.attachments,
	reply_author = excluded.reply_author,
	reply_content = excluded.reply_content,
	reply_channel_id = excluded.reply_channel_id,
	reply_message_id = excluded.reply_message_id
`

const selectSnipeQuery = `
SELECT channel_id, message_id, author_id, author_name, content, sent_at,
	attachments, reply_author, reply_content, reply_channel_id, reply_message_id
FROM snipes WHERE channel_id = ?
`

const upsertEditQuery = `
INSERT INTO edits (
	channel_id, message_id, author_id, author_name, before_content,
	after_content, sent_at, edited_at,
	reply_author, reply_content, reply_channel_id, reply_message_id
) VALUES (
	:channel_id, :message_id, :author_id, :author_name, :before_content,
	:after_content, :sent_at, :edited_at,
	:reply_author, :reply_content, :reply_channel_id, :reply_message_id
)
ON CONFLICT (channel_id) DO UPDATE SET
	message_id = excluded.message_id,
	author_id = excluded.author_id,
	author_name = excluded.author_name,
	before_content = excluded.before_content,
	after_content = excluded.after_content,
	sent_at = excluded.sent_at,
	edited_at = excluded.edited_at,
	reply_author = excluded.reply_author,
	reply_content = excluded.reply_content,
	reply_channel_id = excluded.reply_channel_id,
	reply_message_id = excluded.reply_message_id
`

const selectEditQuery = `
SELECT channel_id, message_id, author_id, author_name, before_content,
	after_content, sent_at, edited_at,
	reply_author, reply_content, reply_channel_id, reply_message_id
FROM edits WHERE channel_id = ?
`

func (db *DB) UpsertSnipe(ctx context.Context, snipe *store.Snipe) error {
	log := ctxzap.Extract(ctx)

	ctx, cancel := context.WithTimeout(ctx, 1*time.Minute)
	defer cancel()

	row, err := encodeSnipe(snipe)
	if err != nil {
		log.With("channel_id", snipe.ChannelID, "error", err).
			Error("failed to encode a snipe")
		return store.ErrInternal
	}

	if _, err := db.db.NamedExecContext(ctx, upsertSnipeQuery, row); err != nil {
		log.With("channel_id", snipe.ChannelID, "error", err).
			Error("failed to upsert a snipe")
		return store.ErrInternal
	}

	return nil
}

func (db *DB) Snipe(ctx context.Context, channelID discord.ChannelID) (*store.Snipe, error) {
	log := ctxzap.Extract(ctx)

	ctx, cancel := context.WithTimeout(ctx, 1*time.Minute)
	defer cancel()

	var row snipeRow
	err := db.db.GetContext(ctx, &row, selectSnipeQuery, int64(channelID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrSnipeNotFound
		}

		log.With("channel_id", channelID, "error", err).
			Error("failed to select a snipe")
		return nil, store.ErrInternal
	}

	snipe, err := row.decode()
	if err != nil {
		log.With("channel_id", channelID, "error", err).
			Error("failed to decode a snipe")
		return nil, store.ErrInternal
	}

	return snipe, nil
}

func (db *DB) UpsertEdit(ctx context.Context, edit *store.Edit) error {
	log := ctxzap.Extract(ctx)

	ctx, cancel := context.WithTimeout(ctx, 1*time.Minute)
	defer cancel()

	if _, err := db.db.NamedExecContext(ctx, upsertEditQuery, encodeEdit(edit)); err != nil {
		log.With("channel_id", edit.ChannelID, "error", err).
			Error("failed to upsert an edit")
		return store.ErrInternal
	}

	return nil
}

func (db *DB) Edit(ctx context.Context, channelID discord.ChannelID) (*store.Edit, error) {
	log := ctxzap.Extract(ctx)

	ctx, cancel := context.WithTimeout(ctx, 1*time.Minute)
	defer cancel()

	var row editRow
	err := db.db.GetContext(ctx, &row, selectEditQuery, int64(channelID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrEditNotFound
		}

		log.With("channel_id", channelID, "error", err).
			Error("failed to select an edit")
		return nil, store.ErrInternal
	}

	return row.decode(), nil
}

func encodeSnipe(snipe *store.Snipe) (*snipeRow, error) {
	attachments, err := json.Marshal(snipe.Attachments)
	if err != nil {
		return nil, err
	}

	row := &snipeRow{
		ChannelID:   int64(snipe.ChannelID),
		MessageID:   int64(snipe.MessageID),
		AuthorID:    int64(snipe.AuthorID),
		AuthorName:  snipe.AuthorName,
		Content:     nullString(snipe.Content),
		SentAt:      snipe.SentAt.Unix(),
		Attachments: string(attachments),
	}
	row.ReplyAuthor, row.ReplyContent, row.ReplyChannelID, row.ReplyMessageID = encodeReply(snipe.Reply)

	return row, nil
}

func (r *snipeRow) decode() (*store.Snipe, error) {
	var attachments []string
	if r.Attachments != "" {
		if err := json.Unmarshal([]byte(r.Attachments), &attachments); err != nil {
			return nil, err
		}
	}

	return &store.Snipe{
		ChannelID:   discord.ChannelID(r.ChannelID),
		MessageID:   discord.MessageID(r.MessageID),
		AuthorID:    discord.UserID(r.AuthorID),
		AuthorName:  r.AuthorName,
		Content:     r.Content.String,
		SentAt:      time.Unix(r.SentAt, 0),
		Attachments: attachments,
		Reply:       decodeReply(r.ReplyAuthor, r.ReplyContent, r.ReplyChannelID, r.ReplyMessageID),
	}, nil
}

func encodeEdit(edit *store.Edit) *editRow {
	row := &editRow{
		ChannelID:     int64(edit.ChannelID),
		MessageID:     int64(edit.MessageID),
		AuthorID:      int64(edit.AuthorID),
		AuthorName:    edit.AuthorName,
		BeforeContent: nullString(edit.Before),
		AfterContent:  nullString(edit.After),
		SentAt:        edit.SentAt.Unix(),
		EditedAt:      edit.EditedAt.Unix(),
	}
	row.ReplyAuthor, row.ReplyContent, row.ReplyChannelID, row.ReplyMessageID = encodeReply(edit.Reply)

	return row
}

func (r *editRow) decode() *store.Edit {
	return &store.Edit{
		ChannelID:  discord.ChannelID(r.ChannelID),
		MessageID:  discord.MessageID(r.MessageID),
		AuthorID:   discord.UserID(r.AuthorID),
		AuthorName: r.AuthorName,
		Before:     r.BeforeContent.String,
		After:      r.AfterContent.String,
		SentAt:     time.Unix(r.SentAt, 0),
		EditedAt:   time.Unix(r.EditedAt, 0),
		Reply:      decodeReply(r.ReplyAuthor, r.ReplyContent, r.ReplyChannelID, r.ReplyMessageID),
	}
}

func encodeReply(reply *store.Reply) (author, content sql.NullString, channelID, messageID sql.NullInt64) {
	if reply == nil {
		return
	}

	author = sql.NullString{String: reply.AuthorName, Valid: true}
	content = nullString(reply.Content)
	channelID = sql.NullInt64{Int64: int64(reply.ChannelID), Valid: true}
	messageID = sql.NullInt64{Int64: int64(reply.MessageID), Valid: true}

	return
}

func decodeReply(author, content sql.NullString, channelID, messageID sql.NullInt64) *store.Reply {
	if !author.Valid {
		return nil
	}

	return &store.Reply{
		AuthorName: author.String,
		Content:    content.String,
		ChannelID:  discord.ChannelID(channelID.Int64),
		MessageID:  discord.MessageID(messageID.Int64),
	}
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

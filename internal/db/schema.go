package db

// schema is the full database schema.
const schema = `
CREATE TABLE IF NOT EXISTS users (
    id            INTEGER PRIMARY KEY,
    email         TEXT NOT NULL,
    password_hash TEXT NOT NULL,
    role          TEXT NOT NULL DEFAULT 'member' CHECK (role IN ('admin', 'member')),
    created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    deleted_at    DATETIME
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email_active
    ON users(email) WHERE deleted_at IS NULL;

CREATE TABLE IF NOT EXISTS members (
    id         INTEGER PRIMARY KEY,
    user_id    INTEGER NOT NULL UNIQUE REFERENCES users(id),
    name       TEXT NOT NULL,
    gender     TEXT,
    birth_date DATETIME,
    city       TEXT,
    country    TEXT,
    bio        TEXT,
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS items (
    id          INTEGER PRIMARY KEY,
    member_id   INTEGER NOT NULL REFERENCES members(id),
    name        TEXT NOT NULL,
    category    TEXT NOT NULL,
    size        TEXT NOT NULL,
    condition   TEXT,
    description TEXT,
    image       BLOB,
    image_mime  TEXT,
    status      TEXT NOT NULL DEFAULT 'available' CHECK (status IN ('available', 'unavailable', 'exchanged')),
    created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    deleted_at  DATETIME
);

CREATE INDEX IF NOT EXISTS idx_items_member ON items(member_id);
CREATE INDEX IF NOT EXISTS idx_items_status ON items(status) WHERE deleted_at IS NULL;

CREATE TABLE IF NOT EXISTS offers (
    id                  INTEGER PRIMARY KEY,
    offering_member_id  INTEGER NOT NULL REFERENCES members(id),
    receiving_member_id INTEGER NOT NULL REFERENCES members(id),
    offered_item_id     INTEGER NOT NULL REFERENCES items(id),
    requested_item_id   INTEGER NOT NULL REFERENCES items(id),
    status              TEXT NOT NULL DEFAULT 'pending' CHECK (status IN ('pending', 'accepted', 'rejected', 'canceled', 'completed')),
    created_at          DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at          DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    CHECK (offered_item_id <> requested_item_id),
    CHECK (offering_member_id <> receiving_member_id)
);

CREATE INDEX IF NOT EXISTS idx_offers_offering ON offers(offering_member_id);
CREATE INDEX IF NOT EXISTS idx_offers_receiving ON offers(receiving_member_id);

CREATE TABLE IF NOT EXISTS settings (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS revoked_tokens (
    jti        TEXT PRIMARY KEY,
    expires_at DATETIME NOT NULL
);
`

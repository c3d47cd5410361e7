package postgres

// Schema is the full DDL, applied idempotently by cmd/migrate and by the
// integration test harness. The partial unique index on
// orders.provider_payment_id is load-bearing: it is what makes webhook
// reconciliation idempotent, so it must exist before the app takes traffic.
const Schema = `
CREATE TABLE IF NOT EXISTS users (
    id            UUID PRIMARY KEY,
    username      TEXT NOT NULL UNIQUE,
    email         TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    role          TEXT NOT NULL DEFAULT 'user',
    avatar        TEXT NOT NULL DEFAULT '',
    created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS products (
    id               UUID PRIMARY KEY,
    title            TEXT NOT NULL,
    description      TEXT NOT NULL,
    category         TEXT NOT NULL,
    developer_id     UUID NOT NULL REFERENCES users(id),
    price            BIGINT NOT NULL CHECK (price >= 0),
    discount_price   BIGINT NOT NULL DEFAULT 0,
    thumbnail        TEXT NOT NULL,
    file_url         TEXT NOT NULL,
    file_size        BIGINT NOT NULL DEFAULT 0,
    downloads        BIGINT NOT NULL DEFAULT 0,
    views            BIGINT NOT NULL DEFAULT 0,
    featured         BOOLEAN NOT NULL DEFAULT FALSE,
    status           TEXT NOT NULL DEFAULT 'pending',
    rejection_reason TEXT NOT NULL DEFAULT '',
    approved_by      TEXT NOT NULL DEFAULT '',
    approved_at      TIMESTAMPTZ,
    rating_average   DOUBLE PRECISION NOT NULL DEFAULT 0,
    rating_count     INTEGER NOT NULL DEFAULT 0,
    tags             TEXT[] NOT NULL DEFAULT '{}',
    created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at       TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_products_status_category ON products (status, category);
CREATE INDEX IF NOT EXISTS idx_products_developer ON products (developer_id);

CREATE TABLE IF NOT EXISTS orders (
    id                   UUID PRIMARY KEY,
    order_number         TEXT NOT NULL UNIQUE,
    user_id              UUID NOT NULL,
    product_id           UUID NOT NULL,
    amount               BIGINT NOT NULL CHECK (amount >= 0),
    currency             TEXT NOT NULL,
    payment_method       TEXT NOT NULL DEFAULT '',
    status               TEXT NOT NULL,
    provider_payment_id  TEXT,
    provider_customer_id TEXT NOT NULL DEFAULT '',
    receipt_url          TEXT NOT NULL DEFAULT '',
    created_at           TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_orders_provider_payment_id
    ON orders (provider_payment_id)
    WHERE provider_payment_id IS NOT NULL;
CREATE INDEX IF NOT EXISTS idx_orders_user ON orders (user_id, created_at DESC);

CREATE TABLE IF NOT EXISTS user_purchases (
    user_id      UUID NOT NULL REFERENCES users(id),
    product_id   UUID NOT NULL,
    purchased_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    PRIMARY KEY (user_id, product_id)
);

CREATE TABLE IF NOT EXISTS reviews (
    id         UUID PRIMARY KEY,
    product_id UUID NOT NULL REFERENCES products(id),
    user_id    UUID NOT NULL REFERENCES users(id),
    rating     INTEGER NOT NULL CHECK (rating BETWEEN 1 AND 5),
    title      TEXT NOT NULL DEFAULT '',
    comment    TEXT NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    UNIQUE (product_id, user_id)
);

CREATE TABLE IF NOT EXISTS categories (
    id          UUID PRIMARY KEY,
    name        TEXT NOT NULL,
    slug        TEXT NOT NULL UNIQUE,
    type        TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    icon        TEXT NOT NULL DEFAULT '',
    is_active   BOOLEAN NOT NULL DEFAULT TRUE,
    sort_order  INTEGER NOT NULL DEFAULT 0,
    created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`

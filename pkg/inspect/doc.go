// Package inspect reports how the hospital backend's authentication settings
// resolve on this machine: whether the .env file is present, which of
// SECRET_KEY, DATABASE_URL and ACCESS_TOKEN_EXPIRE_MINUTES are set and where
// they come from. Secret values are only ever shown redacted.
package inspect

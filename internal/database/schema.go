package database

// Schema is the complete DDL of the index. Every table is STRICT so SQLite
// rejects values of the wrong type instead of coercing them.
const Schema = `
CREATE TABLE IF NOT EXISTS folder (
    id        INTEGER PRIMARY KEY,
    path      TEXT NOT NULL UNIQUE,
    last_scan INTEGER,
    remote    INTEGER NOT NULL DEFAULT 0 CHECK (remote IN (0, 1))
) STRICT;

CREATE TABLE IF NOT EXISTS video (
    id        INTEGER PRIMARY KEY,
    folder_id INTEGER NOT NULL,
    path      TEXT NOT NULL,
    added     INTEGER NOT NULL,
    mtime     INTEGER NOT NULL,
    title     TEXT NOT NULL DEFAULT '',
    cksum     TEXT,
    res_x     INTEGER,
    res_y     INTEGER,
    duration  INTEGER,
    hidden    INTEGER NOT NULL DEFAULT 0 CHECK (hidden IN (0, 1)),
    UNIQUE (folder_id, path),
    CHECK ((res_x IS NULL) = (res_y IS NULL)),
    CHECK (res_x IS NULL OR (res_x >= 0 AND res_y >= 0)),
    CHECK (duration IS NULL OR duration > 0),
    FOREIGN KEY (folder_id) REFERENCES folder (id)
        ON UPDATE RESTRICT
        ON DELETE CASCADE
) STRICT;

CREATE TABLE IF NOT EXISTS program (
    id    INTEGER PRIMARY KEY,
    title TEXT NOT NULL
) STRICT;

CREATE TABLE IF NOT EXISTS prog_vid_link (
    id      INTEGER PRIMARY KEY,
    prog_id INTEGER NOT NULL,
    vid_id  INTEGER NOT NULL,
    UNIQUE (prog_id, vid_id),
    FOREIGN KEY (prog_id) REFERENCES program (id)
        ON UPDATE RESTRICT
        ON DELETE CASCADE,
    FOREIGN KEY (vid_id) REFERENCES video (id)
        ON UPDATE RESTRICT
        ON DELETE CASCADE
) STRICT;

CREATE TABLE IF NOT EXISTS tag (
    id   INTEGER PRIMARY KEY,
    name TEXT NOT NULL UNIQUE
) STRICT;

CREATE TABLE IF NOT EXISTS tag_vid_link (
    id     INTEGER PRIMARY KEY,
    tag_id INTEGER NOT NULL,
    vid_id INTEGER NOT NULL,
    UNIQUE (tag_id, vid_id),
    FOREIGN KEY (tag_id) REFERENCES tag (id)
        ON UPDATE RESTRICT
        ON DELETE CASCADE,
    FOREIGN KEY (vid_id) REFERENCES video (id)
        ON UPDATE RESTRICT
        ON DELETE CASCADE
) STRICT;

CREATE TABLE IF NOT EXISTS person (
    id   INTEGER PRIMARY KEY,
    name TEXT NOT NULL UNIQUE,
    born INTEGER
) STRICT;

CREATE TABLE IF NOT EXISTS person_vid_link (
    id        INTEGER PRIMARY KEY,
    person_id INTEGER NOT NULL,
    vid_id    INTEGER NOT NULL,
    role      TEXT NOT NULL,
    UNIQUE (person_id, vid_id, role),
    FOREIGN KEY (person_id) REFERENCES person (id)
        ON UPDATE RESTRICT
        ON DELETE CASCADE,
    FOREIGN KEY (vid_id) REFERENCES video (id)
        ON UPDATE RESTRICT
        ON DELETE CASCADE
) STRICT;

CREATE INDEX IF NOT EXISTS folder_path_idx ON folder (path);
CREATE INDEX IF NOT EXISTS folder_scan_idx ON folder (last_scan);
CREATE INDEX IF NOT EXISTS vid_folder_idx ON video (folder_id);
CREATE INDEX IF NOT EXISTS vid_path_idx ON video (path);
CREATE INDEX IF NOT EXISTS vid_res_idx ON video (res_x, res_y);
CREATE INDEX IF NOT EXISTS vid_dur_idx ON video (duration);
CREATE INDEX IF NOT EXISTS vid_hidden_idx ON video (hidden);
CREATE INDEX IF NOT EXISTS prog_link_prog_idx ON prog_vid_link (prog_id);
CREATE INDEX IF NOT EXISTS prog_link_vid_idx ON prog_vid_link (vid_id);
CREATE INDEX IF NOT EXISTS tag_link_tag_idx ON tag_vid_link (tag_id);
CREATE INDEX IF NOT EXISTS tag_link_vid_idx ON tag_vid_link (vid_id);
CREATE INDEX IF NOT EXISTS person_link_person_idx ON person_vid_link (person_id);
CREATE INDEX IF NOT EXISTS person_link_vid_idx ON person_vid_link (vid_id);
`

// Tables lists the tables created by Schema, parents before children
var Tables = []string{
	"folder",
	"video",
	"program",
	"prog_vid_link",
	"tag",
	"tag_vid_link",
	"person",
	"person_vid_link",
}

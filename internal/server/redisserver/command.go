package redisserver

import (
	"bytes"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/flashkv/flashkv/internal/infra/buildinfo"
	"github.com/flashkv/flashkv/internal/resp"
	"github.com/flashkv/flashkv/internal/storage"
)

// commandFunc turns a decoded command's arguments (args[0] is the command
// name) into a RESP reply. Arity and integer-parse validation happen
// before the engine is ever touched.
type commandFunc func(engine *storage.Engine, args [][]byte) resp.Value

// dispatchTable is the static, ASCII-uppercased command table. A flat map
// plus one function per command is both faster and clearer than a
// polymorphic command hierarchy.
type dispatchTable map[string]commandFunc

func commandTable() dispatchTable {
	return dispatchTable{
		"PING":      cmdPing,
		"ECHO":      cmdEcho,
		"TIME":      cmdTime,
		"COMMAND":   cmdCommand,
		"INFO":      cmdInfo,
		"DBSIZE":    cmdDBSize,
		"FLUSHDB":   cmdFlush,
		"FLUSHALL":  cmdFlush,
		"TYPE":      cmdType,
		"EXISTS":    cmdExists,
		"DEL":       cmdDel,
		"KEYS":      cmdKeys,
		"RANDOMKEY": cmdRandomKey,
		"RENAME":    cmdRename,
		"RENAMENX":  cmdRenameNX,
		"EXPIRE":    cmdExpire,
		"PEXPIRE":   cmdPExpire,
		"EXPIREAT":  cmdExpireAt,
		"PERSIST":   cmdPersist,
		"TTL":       cmdTTL,
		"PTTL":      cmdPTTL,
		"GET":       cmdGet,
		"SET":       cmdSet,
		"SETNX":     cmdSetNX,
		"SETEX":     cmdSetEX,
		"GETSET":    cmdGetSet,
		"GETDEL":    cmdGetDel,
		"APPEND":    cmdAppend,
		"STRLEN":    cmdStrlen,
		"INCR":      cmdIncr,
		"INCRBY":    cmdIncrBy,
		"DECR":      cmdDecr,
		"DECRBY":    cmdDecrBy,
		"MSET":      cmdMset,
		"MGET":      cmdMget,
		"LPUSH":     cmdLPush,
		"RPUSH":     cmdRPush,
		"LPOP":      cmdLPop,
		"RPOP":      cmdRPop,
		"LLEN":      cmdLLen,
		"LINDEX":    cmdLIndex,
		"LRANGE":    cmdLRange,
		"LSET":      cmdLSet,
		"LREM":      cmdLRem,
	}
}

// normalizeCommandName upper-cases an ASCII command token without
// allocating when it's already upper case.
func normalizeCommandName(b []byte) string {
	if len(b) == 0 {
		return ""
	}
	if bytes.ContainsAny(b, "abcdefghijklmnopqrstuvwxyz") {
		return strings.ToUpper(string(b))
	}
	return string(b)
}

func errWrongArgs(name string) resp.Value {
	return resp.NewError("ERR wrong number of arguments for '" + name + "'")
}

var errNotInteger = resp.NewError("ERR value is not an integer or out of range")

// errForStorage maps a storage package error to its RESP error reply.
// Unrecognized errors fall back to a generic ERR reply rather than
// leaking Go error text verbatim for every case.
func errForStorage(err error) resp.Value {
	switch {
	case errors.Is(err, storage.ErrWrongType):
		return resp.NewError("WRONGTYPE Operation against a key holding the wrong kind of value")
	case errors.Is(err, storage.ErrNotAnInteger):
		return errNotInteger
	case errors.Is(err, storage.ErrIntegerOverflow):
		return resp.NewError("ERR increment or decrement would overflow")
	case errors.Is(err, storage.ErrIndexOutOfRange):
		return resp.NewError("ERR index out of range")
	case errors.Is(err, storage.ErrSyntax):
		return resp.NewError("ERR syntax error")
	default:
		return resp.NewError("ERR " + err.Error())
	}
}

func parseInt(b []byte) (int64, bool) {
	n, err := strconv.ParseInt(string(b), 10, 64)
	return n, err == nil
}

// --- connection-level ---

func cmdPing(_ *storage.Engine, args [][]byte) resp.Value {
	switch len(args) {
	case 1:
		return resp.NewSimpleString("PONG")
	case 2:
		return resp.NewBulk(args[1])
	default:
		return errWrongArgs("PING")
	}
}

func cmdEcho(_ *storage.Engine, args [][]byte) resp.Value {
	if len(args) != 2 {
		return errWrongArgs("ECHO")
	}
	return resp.NewBulk(args[1])
}

func cmdTime(_ *storage.Engine, args [][]byte) resp.Value {
	if len(args) != 1 {
		return errWrongArgs("TIME")
	}
	now := time.Now()
	return resp.NewArray([]resp.Value{
		resp.NewBulkString(strconv.FormatInt(now.Unix(), 10)),
		resp.NewBulkString(strconv.FormatInt(int64(now.Nanosecond())/1000, 10)),
	})
}

func cmdCommand(_ *storage.Engine, _ [][]byte) resp.Value {
	return resp.NewArray([]resp.Value{})
}

func cmdInfo(engine *storage.Engine, args [][]byte) resp.Value {
	if len(args) > 2 {
		return errWrongArgs("INFO")
	}
	stats := engine.Stats()
	var b strings.Builder
	b.WriteString("# Server\r\n")
	b.WriteString("flashkv_version:" + buildinfo.Version + "\r\n")
	b.WriteString("flashkv_commit:" + buildinfo.Commit + "\r\n")
	b.WriteString("go_version:" + buildinfo.GoVersion + "\r\n")
	b.WriteString("# Clients\r\n")
	b.WriteString("# Stats\r\n")
	b.WriteString("keyspace_hits:" + strconv.FormatInt(stats.GetCount, 10) + "\r\n")
	b.WriteString("total_commands_processed:" + strconv.FormatInt(stats.SetCount+stats.GetCount+stats.DelCount, 10) + "\r\n")
	b.WriteString("expired_keys:" + strconv.FormatInt(stats.ExpiredCount, 10) + "\r\n")
	b.WriteString("db0:keys=" + strconv.FormatInt(stats.KeyCount, 10) + "\r\n")
	b.WriteString("used_memory:" + strconv.FormatInt(engine.MemoryInfo(), 10) + "\r\n")
	return resp.NewBulkString(b.String())
}

// --- keyspace ---

func cmdDBSize(engine *storage.Engine, args [][]byte) resp.Value {
	if len(args) != 1 {
		return errWrongArgs("DBSIZE")
	}
	return resp.NewInteger(engine.DBSize())
}

func cmdFlush(engine *storage.Engine, args [][]byte) resp.Value {
	if len(args) != 1 {
		return errWrongArgs("FLUSHDB")
	}
	engine.Flush()
	return resp.NewSimpleString("OK")
}

func cmdType(engine *storage.Engine, args [][]byte) resp.Value {
	if len(args) != 2 {
		return errWrongArgs("TYPE")
	}
	t, _ := engine.Type(string(args[1]))
	return resp.NewSimpleString(t)
}

func cmdExists(engine *storage.Engine, args [][]byte) resp.Value {
	if len(args) < 2 {
		return errWrongArgs("EXISTS")
	}
	return resp.NewInteger(engine.Exists(keyStrings(args[1:])))
}

func cmdDel(engine *storage.Engine, args [][]byte) resp.Value {
	if len(args) < 2 {
		return errWrongArgs("DEL")
	}
	return resp.NewInteger(engine.Del(keyStrings(args[1:])))
}

func cmdKeys(engine *storage.Engine, args [][]byte) resp.Value {
	if len(args) != 2 {
		return errWrongArgs("KEYS")
	}
	keys := engine.Keys(string(args[1]))
	items := make([]resp.Value, len(keys))
	for i, k := range keys {
		items[i] = resp.NewBulkString(k)
	}
	return resp.NewArray(items)
}

func cmdRandomKey(engine *storage.Engine, args [][]byte) resp.Value {
	if len(args) != 1 {
		return errWrongArgs("RANDOMKEY")
	}
	k := engine.RandomKey()
	if k == "" {
		return resp.NullBulk()
	}
	return resp.NewBulkString(k)
}

func cmdRename(engine *storage.Engine, args [][]byte) resp.Value {
	if len(args) != 3 {
		return errWrongArgs("RENAME")
	}
	ok, err := engine.Rename(string(args[1]), string(args[2]))
	if err != nil {
		return errForStorage(err)
	}
	if !ok {
		return resp.NewError("ERR no such key")
	}
	return resp.NewSimpleString("OK")
}

func cmdRenameNX(engine *storage.Engine, args [][]byte) resp.Value {
	if len(args) != 3 {
		return errWrongArgs("RENAMENX")
	}
	ok, err := engine.RenameNX(string(args[1]), string(args[2]))
	if err != nil {
		return errForStorage(err)
	}
	return resp.NewInteger(boolInt(ok))
}

// --- expiry ---

func cmdExpire(engine *storage.Engine, args [][]byte) resp.Value {
	if len(args) != 3 {
		return errWrongArgs("EXPIRE")
	}
	seconds, ok := parseInt(args[2])
	if !ok {
		return errNotInteger
	}
	changed, err := engine.Expire(string(args[1]), time.Duration(seconds)*time.Second)
	if err != nil {
		return errForStorage(err)
	}
	return resp.NewInteger(boolInt(changed))
}

func cmdPExpire(engine *storage.Engine, args [][]byte) resp.Value {
	if len(args) != 3 {
		return errWrongArgs("PEXPIRE")
	}
	millis, ok := parseInt(args[2])
	if !ok {
		return errNotInteger
	}
	changed, err := engine.Expire(string(args[1]), time.Duration(millis)*time.Millisecond)
	if err != nil {
		return errForStorage(err)
	}
	return resp.NewInteger(boolInt(changed))
}

func cmdExpireAt(engine *storage.Engine, args [][]byte) resp.Value {
	if len(args) != 3 {
		return errWrongArgs("EXPIREAT")
	}
	seconds, ok := parseInt(args[2])
	if !ok {
		return errNotInteger
	}
	changed, err := engine.ExpireAt(string(args[1]), time.Unix(seconds, 0))
	if err != nil {
		return errForStorage(err)
	}
	return resp.NewInteger(boolInt(changed))
}

func cmdPersist(engine *storage.Engine, args [][]byte) resp.Value {
	if len(args) != 2 {
		return errWrongArgs("PERSIST")
	}
	had, err := engine.Persist(string(args[1]))
	if err != nil {
		return errForStorage(err)
	}
	return resp.NewInteger(boolInt(had))
}

func cmdTTL(engine *storage.Engine, args [][]byte) resp.Value {
	if len(args) != 2 {
		return errWrongArgs("TTL")
	}
	return resp.NewInteger(engine.TTL(string(args[1])))
}

func cmdPTTL(engine *storage.Engine, args [][]byte) resp.Value {
	if len(args) != 2 {
		return errWrongArgs("PTTL")
	}
	return resp.NewInteger(engine.PTTL(string(args[1])))
}

// --- strings ---

func cmdGet(engine *storage.Engine, args [][]byte) resp.Value {
	if len(args) != 2 {
		return errWrongArgs("GET")
	}
	v, ok, err := engine.Get(string(args[1]))
	if err != nil {
		return errForStorage(err)
	}
	if !ok {
		return resp.NullBulk()
	}
	return resp.NewBulk(v)
}

// cmdSet implements SET key value [EX seconds] [PX milliseconds] [NX|XX].
func cmdSet(engine *storage.Engine, args [][]byte) resp.Value {
	if len(args) < 3 {
		return errWrongArgs("SET")
	}
	key, value := string(args[1]), args[2]

	var (
		ttl    time.Duration
		hasTTL bool
		nx, xx bool
	)
	for i := 3; i < len(args); i++ {
		opt := strings.ToUpper(string(args[i]))
		switch opt {
		case "NX":
			nx = true
		case "XX":
			xx = true
		case "EX", "PX":
			i++
			if i >= len(args) {
				return resp.NewError("ERR syntax error")
			}
			n, ok := parseInt(args[i])
			if !ok {
				return errNotInteger
			}
			hasTTL = true
			if opt == "EX" {
				ttl = time.Duration(n) * time.Second
			} else {
				ttl = time.Duration(n) * time.Millisecond
			}
		default:
			return resp.NewError("ERR syntax error")
		}
	}
	if nx && xx {
		return resp.NewError("ERR syntax error")
	}

	ok, err := engine.Set(key, value, ttl, hasTTL, nx, xx)
	if err != nil {
		return errForStorage(err)
	}
	if !ok {
		return resp.NullBulk()
	}
	return resp.NewSimpleString("OK")
}

func cmdSetNX(engine *storage.Engine, args [][]byte) resp.Value {
	if len(args) != 3 {
		return errWrongArgs("SETNX")
	}
	ok, err := engine.Set(string(args[1]), args[2], 0, false, true, false)
	if err != nil {
		return errForStorage(err)
	}
	return resp.NewInteger(boolInt(ok))
}

func cmdSetEX(engine *storage.Engine, args [][]byte) resp.Value {
	if len(args) != 4 {
		return errWrongArgs("SETEX")
	}
	seconds, ok := parseInt(args[2])
	if !ok {
		return errNotInteger
	}
	if _, err := engine.Set(string(args[1]), args[3], time.Duration(seconds)*time.Second, true, false, false); err != nil {
		return errForStorage(err)
	}
	return resp.NewSimpleString("OK")
}

func cmdGetSet(engine *storage.Engine, args [][]byte) resp.Value {
	if len(args) != 3 {
		return errWrongArgs("GETSET")
	}
	prev, had, err := engine.GetSet(string(args[1]), args[2])
	if err != nil {
		return errForStorage(err)
	}
	if !had {
		return resp.NullBulk()
	}
	return resp.NewBulk(prev)
}

func cmdGetDel(engine *storage.Engine, args [][]byte) resp.Value {
	if len(args) != 2 {
		return errWrongArgs("GETDEL")
	}
	v, existed, err := engine.GetDel(string(args[1]))
	if err != nil {
		return errForStorage(err)
	}
	if !existed {
		return resp.NullBulk()
	}
	return resp.NewBulk(v)
}

func cmdAppend(engine *storage.Engine, args [][]byte) resp.Value {
	if len(args) != 3 {
		return errWrongArgs("APPEND")
	}
	n, err := engine.Append(string(args[1]), args[2])
	if err != nil {
		return errForStorage(err)
	}
	return resp.NewInteger(n)
}

func cmdStrlen(engine *storage.Engine, args [][]byte) resp.Value {
	if len(args) != 2 {
		return errWrongArgs("STRLEN")
	}
	n, err := engine.Strlen(string(args[1]))
	if err != nil {
		return errForStorage(err)
	}
	return resp.NewInteger(n)
}

func cmdIncr(engine *storage.Engine, args [][]byte) resp.Value {
	if len(args) != 2 {
		return errWrongArgs("INCR")
	}
	n, err := engine.Incr(string(args[1]))
	if err != nil {
		return errForStorage(err)
	}
	return resp.NewInteger(n)
}

func cmdIncrBy(engine *storage.Engine, args [][]byte) resp.Value {
	if len(args) != 3 {
		return errWrongArgs("INCRBY")
	}
	delta, ok := parseInt(args[2])
	if !ok {
		return errNotInteger
	}
	n, err := engine.IncrBy(string(args[1]), delta)
	if err != nil {
		return errForStorage(err)
	}
	return resp.NewInteger(n)
}

func cmdDecr(engine *storage.Engine, args [][]byte) resp.Value {
	if len(args) != 2 {
		return errWrongArgs("DECR")
	}
	n, err := engine.Decr(string(args[1]))
	if err != nil {
		return errForStorage(err)
	}
	return resp.NewInteger(n)
}

func cmdDecrBy(engine *storage.Engine, args [][]byte) resp.Value {
	if len(args) != 3 {
		return errWrongArgs("DECRBY")
	}
	delta, ok := parseInt(args[2])
	if !ok {
		return errNotInteger
	}
	n, err := engine.DecrBy(string(args[1]), delta)
	if err != nil {
		return errForStorage(err)
	}
	return resp.NewInteger(n)
}

func cmdMset(engine *storage.Engine, args [][]byte) resp.Value {
	if len(args) < 3 || len(args)%2 != 1 {
		return errWrongArgs("MSET")
	}
	pairs := make([][2][]byte, 0, (len(args)-1)/2)
	for i := 1; i < len(args); i += 2 {
		pairs = append(pairs, [2][]byte{args[i], args[i+1]})
	}
	if err := engine.Mset(pairs); err != nil {
		return errForStorage(err)
	}
	return resp.NewSimpleString("OK")
}

func cmdMget(engine *storage.Engine, args [][]byte) resp.Value {
	if len(args) < 2 {
		return errWrongArgs("MGET")
	}
	values := engine.Mget(keyStrings(args[1:]))
	items := make([]resp.Value, len(values))
	for i, v := range values {
		if v == nil {
			items[i] = resp.NullBulk()
		} else {
			items[i] = resp.NewBulk(v)
		}
	}
	return resp.NewArray(items)
}

// --- lists ---

func cmdLPush(engine *storage.Engine, args [][]byte) resp.Value {
	if len(args) < 3 {
		return errWrongArgs("LPUSH")
	}
	n, err := engine.LPush(string(args[1]), args[2:])
	if err != nil {
		return errForStorage(err)
	}
	return resp.NewInteger(n)
}

func cmdRPush(engine *storage.Engine, args [][]byte) resp.Value {
	if len(args) < 3 {
		return errWrongArgs("RPUSH")
	}
	n, err := engine.RPush(string(args[1]), args[2:])
	if err != nil {
		return errForStorage(err)
	}
	return resp.NewInteger(n)
}

func cmdLPop(engine *storage.Engine, args [][]byte) resp.Value {
	if len(args) != 2 {
		return errWrongArgs("LPOP")
	}
	v, ok, err := engine.LPop(string(args[1]))
	if err != nil {
		return errForStorage(err)
	}
	if !ok {
		return resp.NullBulk()
	}
	return resp.NewBulk(v)
}

func cmdRPop(engine *storage.Engine, args [][]byte) resp.Value {
	if len(args) != 2 {
		return errWrongArgs("RPOP")
	}
	v, ok, err := engine.RPop(string(args[1]))
	if err != nil {
		return errForStorage(err)
	}
	if !ok {
		return resp.NullBulk()
	}
	return resp.NewBulk(v)
}

func cmdLLen(engine *storage.Engine, args [][]byte) resp.Value {
	if len(args) != 2 {
		return errWrongArgs("LLEN")
	}
	n, err := engine.LLen(string(args[1]))
	if err != nil {
		return errForStorage(err)
	}
	return resp.NewInteger(n)
}

func cmdLIndex(engine *storage.Engine, args [][]byte) resp.Value {
	if len(args) != 3 {
		return errWrongArgs("LINDEX")
	}
	idx, ok := parseInt(args[2])
	if !ok {
		return errNotInteger
	}
	v, found, err := engine.LIndex(string(args[1]), idx)
	if err != nil {
		return errForStorage(err)
	}
	if !found {
		return resp.NullBulk()
	}
	return resp.NewBulk(v)
}

func cmdLRange(engine *storage.Engine, args [][]byte) resp.Value {
	if len(args) != 4 {
		return errWrongArgs("LRANGE")
	}
	start, ok1 := parseInt(args[2])
	stop, ok2 := parseInt(args[3])
	if !ok1 || !ok2 {
		return errNotInteger
	}
	values, err := engine.LRange(string(args[1]), start, stop)
	if err != nil {
		return errForStorage(err)
	}
	items := make([]resp.Value, len(values))
	for i, v := range values {
		items[i] = resp.NewBulk(v)
	}
	return resp.NewArray(items)
}

func cmdLSet(engine *storage.Engine, args [][]byte) resp.Value {
	if len(args) != 4 {
		return errWrongArgs("LSET")
	}
	idx, ok := parseInt(args[2])
	if !ok {
		return errNotInteger
	}
	if err := engine.LSet(string(args[1]), idx, args[3]); err != nil {
		return errForStorage(err)
	}
	return resp.NewSimpleString("OK")
}

func cmdLRem(engine *storage.Engine, args [][]byte) resp.Value {
	if len(args) != 4 {
		return errWrongArgs("LREM")
	}
	count, ok := parseInt(args[2])
	if !ok {
		return errNotInteger
	}
	n, err := engine.LRem(string(args[1]), count, args[3])
	if err != nil {
		return errForStorage(err)
	}
	return resp.NewInteger(n)
}

// --- helpers ---

func keyStrings(args [][]byte) []string {
	out := make([]string, len(args))
	for i, a := range args {
		out[i] = string(a)
	}
	return out
}

func boolInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

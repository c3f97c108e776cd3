// Package lua runs node-type handlers written in Lua.
//
// Scripts run in a restricted gopher-lua state: only the base, table,
// string and math libraries are opened, and the loaders (dofile, loadfile,
// load, require) are removed. Every call is bounded by an execution
// timeout.
//
// A script registers handlers through the blockstorm module:
//
//	blockstorm.register("callout", function(ctx)
//	    -- ctx.type, ctx.target, ctx.description, ctx.operations
//	    -- ctx.nodes lists inserted nodes as {type=, text=, attributes=}
//	    if ctx.nodes[1] and ctx.nodes[1].text == "" then
//	        return false, "empty callout"
//	    end
//	    return { defaults = { icon = "💡" } }
//	end)
//
// A handler returns nil (or true) to accept the transaction unchanged,
// false plus a message to reject it, or a table. In the table, defaults
// fills missing attributes on the inserted nodes of the handled type and
// description relabels the transaction.
//
// Host loads scripts and plugs each registration into a handler.Registry:
//
//	host, err := lua.NewHost(engine.Handlers())
//	if err != nil {
//	    return err
//	}
//	defer host.Close()
//	if err := host.LoadFile("handlers/callout.lua"); err != nil {
//	    return err
//	}
package lua

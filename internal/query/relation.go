package query

// constrain narrows the rows of target, aliased as alias in sb, to those
// related to ref. Depending on how the two levels relate it adds:
//
//   - equality on the target's own keys, when ref names the target level;
//   - equality on native ward columns, when the target is a ward;
//   - one JOIN to ref's table, when ref identifies at most one descendant
//     of each target row (a ward, or anything below a state);
//   - one EXISTS through geo.wards otherwise, so rows are never multiplied.
func constrain(sb *selectBuilder, target Level, alias string, ref *Reference) {
	if ref == nil {
		return
	}
	switch {
	case ref.Level == target:
		equalKeys(sb, alias, ref)

	case target == LevelWard:
		sb.eq(alias+".state", ref.State)
		if ref.Level.yearScoped() {
			sb.eq(alias+".year", ref.Year)
		}
		sb.eq(alias+"."+levels[ref.Level].wardColumn, ref.Name)

	case target == LevelState:
		j := "ref_" + ref.Level.String()
		sb.join("JOIN " + ref.Level.Table() + " " + j + " ON " + j + ".state = " + alias + ".name")
		equalKeys(sb, j, ref)

	case ref.Level == LevelWard:
		j := "ref_ward"
		on := j + ".state = " + alias + ".state AND " + j + "." + levels[target].wardColumn + " = " + alias + ".name"
		if target.yearScoped() {
			on += " AND " + j + ".year = " + alias + ".year"
		}
		sb.join("JOIN " + LevelWard.Table() + " " + j + " ON " + on)
		equalKeys(sb, j, ref)

	default:
		j := "ref_" + ref.Level.String()
		cond := j + ".state = " + alias + ".state AND " + j + "." + levels[target].wardColumn + " = " + alias + ".name"
		if target.yearScoped() {
			cond += " AND " + j + ".year = " + alias + ".year"
		}
		cond += " AND " + j + ".state = " + sb.p.bind(ref.State)
		if ref.Level.yearScoped() {
			cond += " AND " + j + ".year = " + sb.p.bind(ref.Year)
		}
		cond += " AND " + j + "." + levels[ref.Level].wardColumn + " = " + sb.p.bind(ref.Name)
		sb.cond("EXISTS (SELECT 1 FROM " + LevelWard.Table() + " " + j + " WHERE " + cond + ")")
	}
}

func equalKeys(sb *selectBuilder, alias string, ref *Reference) {
	keys := levels[ref.Level].keys
	for i, v := range ref.keyValues() {
		sb.eq(alias+"."+keys[i], v)
	}
}

package navigator

// ToggleWrap switches line wrapping. Only presentation changes.
func ToggleWrap(state State) State {
	state.WrapEnabled = !state.WrapEnabled
	return state
}

// ChangeFontSize adjusts the viewer font size by delta pixels, not going below
// MinimumFontSize.
func ChangeFontSize(state State, delta int) State {
	state.FontSize += delta
	if state.FontSize < MinimumFontSize {
		state.FontSize = MinimumFontSize
	}
	return state
}

// SwitchTheme alternates between the light and dark themes.
func SwitchTheme(state State) State {
	if state.Theme == ThemeDark {
		state.Theme = ThemeLight
	} else {
		state.Theme = ThemeDark
	}
	return state
}

package browser

import "encoding/json"

// jsArg renders a string as a JavaScript literal. Go's %q is not safe
// here: it escapes non-BMP runes as \U00XXXXXX, which JavaScript does
// not parse. JSON string encoding is valid JS for any input.
func jsArg(s string) string {
	b, err := json.Marshal(s)
	if err != nil {
		return `""`
	}
	return string(b)
}

// JavaScript snippets injected into browsing contexts. Scans tag each
// element with a data-ibot-ref attribute so later actions can address
// it with a plain attribute selector, which survives React re-renders
// better than node handles.

const scanButtonsJS = `
(() => {
  const visible = (el) => {
    const r = el.getBoundingClientRect();
    const s = window.getComputedStyle(el);
    return r.width > 0 && r.height > 0 && s.visibility !== 'hidden' && s.display !== 'none';
  };
  const out = [];
  let i = 0;
  for (const b of document.querySelectorAll('button')) {
    if (!visible(b)) continue;
    const ref = 'btn-' + (i++);
    b.setAttribute('data-ibot-ref', ref);
    out.push({
      ref: ref,
      text: (b.innerText || '').trim(),
      label: b.getAttribute('aria-label') || '',
      disabled: !!b.disabled,
    });
  }
  return out;
})()
`

const scanFieldsJS = `
(() => {
  const visible = (el) => {
    const r = el.getBoundingClientRect();
    const s = window.getComputedStyle(el);
    return r.width > 0 && r.height > 0 && s.visibility !== 'hidden' && s.display !== 'none';
  };
  const labelFor = (el) => {
    if (el.id) {
      const l = document.querySelector('label[for="' + CSS.escape(el.id) + '"]');
      if (l) return (l.innerText || '').trim();
    }
    return '';
  };
  const ancestorLabel = (el) => {
    const host = el.closest('div, fieldset, li');
    if (!host) return '';
    const l = host.querySelector('label, legend, span');
    return l ? (l.textContent || '').trim() : '';
  };
  const out = [];
  let i = 0;
  const tag = (el) => {
    const ref = 'fld-' + (i++);
    el.setAttribute('data-ibot-ref', ref);
    return ref;
  };

  for (const el of document.querySelectorAll('input[type="text"], input[type="email"], input[type="tel"], input[type="number"]')) {
    if (!visible(el)) continue;
    out.push({
      ref: tag(el), kind: 'text', inputType: el.type,
      value: el.value || '',
      labelText: labelFor(el),
      ariaLabel: el.getAttribute('aria-label') || '',
      placeholder: el.getAttribute('placeholder') || '',
      ancestorLabel: ancestorLabel(el),
    });
  }

  for (const el of document.querySelectorAll('textarea')) {
    if (!visible(el)) continue;
    out.push({
      ref: tag(el), kind: 'textarea', inputType: 'textarea',
      value: el.value || '',
      labelText: labelFor(el),
      ariaLabel: el.getAttribute('aria-label') || '',
      placeholder: el.getAttribute('placeholder') || '',
      ancestorLabel: ancestorLabel(el),
    });
  }

  for (const el of document.querySelectorAll('select')) {
    if (!visible(el)) continue;
    const options = [];
    for (const o of el.options) {
      if (o.value) options.push((o.innerText || '').trim());
    }
    let current = '';
    if (el.value && el.selectedIndex >= 0) {
      current = (el.options[el.selectedIndex].innerText || '').trim();
    }
    out.push({
      ref: tag(el), kind: 'select', inputType: 'select',
      value: current, options: options,
      labelText: labelFor(el),
      ariaLabel: el.getAttribute('aria-label') || '',
      ancestorLabel: ancestorLabel(el),
    });
  }

  const groups = {};
  for (const el of document.querySelectorAll('input[type="radio"]')) {
    if (!visible(el) || !el.name) continue;
    (groups[el.name] = groups[el.name] || []).push(el);
  }
  for (const name of Object.keys(groups)) {
    const radios = groups[name];
    const options = [];
    const optionRefs = [];
    let checked = '';
    for (const r of radios) {
      const lbl = labelFor(r) || r.getAttribute('aria-label') || ancestorLabel(r);
      options.push(lbl);
      optionRefs.push(tag(r));
      if (r.checked) checked = lbl;
    }
    const host = radios[0].closest('fieldset, div');
    let groupLabel = '';
    if (host) {
      const l = host.querySelector('legend, label, span');
      groupLabel = l ? (l.textContent || '').trim() : '';
    }
    out.push({
      ref: 'rad-' + name, kind: 'radio', inputType: 'radio',
      value: checked, options: options, optionRefs: optionRefs,
      ancestorLabel: groupLabel || name,
    });
  }

  for (const el of document.querySelectorAll('input[type="file"]')) {
    out.push({
      ref: tag(el), kind: 'file', inputType: 'file',
      accept: el.getAttribute('accept') || '',
      labelText: labelFor(el),
      ariaLabel: el.getAttribute('aria-label') || '',
      ancestorLabel: ancestorLabel(el),
    });
  }

  return out;
})()
`

const controlCountsJS = `
(() => {
  return {
    buttons: document.querySelectorAll('button').length,
    inputs: document.querySelectorAll('input[type="text"], input[type="email"], input[type="tel"], input[type="number"]').length,
    selects: document.querySelectorAll('select').length,
  };
})()
`

// selectByTextJS picks the option whose visible text equals the wanted
// string and fires the events React listens for.
const selectByTextJS = `
((ref, wanted) => {
  const el = document.querySelector('[data-ibot-ref="' + ref + '"]');
  if (!el) return false;
  for (const o of el.options) {
    if ((o.innerText || '').trim() === wanted) {
      el.value = o.value;
      el.dispatchEvent(new Event('input', { bubbles: true }));
      el.dispatchEvent(new Event('change', { bubbles: true }));
      return true;
    }
  }
  return false;
})(%s, %s)
`

// fillJS sets a text-like control's value through the native setter so
// controlled React inputs pick it up.
const fillJS = `
((ref, value) => {
  const el = document.querySelector('[data-ibot-ref="' + ref + '"]');
  if (!el) return false;
  const proto = el.tagName === 'TEXTAREA' ? HTMLTextAreaElement.prototype : HTMLInputElement.prototype;
  const setter = Object.getOwnPropertyDescriptor(proto, 'value').set;
  setter.call(el, value);
  el.dispatchEvent(new Event('input', { bubbles: true }));
  el.dispatchEvent(new Event('change', { bubbles: true }));
  return true;
})(%s, %s)
`
